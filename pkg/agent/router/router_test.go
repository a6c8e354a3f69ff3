package router

import (
	"testing"

	"ai-studypartner-be/pkg/agent/classifier"
	"ai-studypartner-be/pkg/store"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		sticky string
		want   string
	}{
		{"quiz label", classifier.LabelQuiz, "", store.ModeQuizSetter},
		{"simplify label", classifier.LabelSimplify, "", store.ModeSimplify},
		{"summarize label", classifier.LabelSummarize, "", store.ModeSummarize},
		{"advisor label", classifier.LabelAdvisor, "", store.ModeAdvisor},
		{"query label", classifier.LabelQuery, "", store.ModeQuery},
		{"unknown label falls back to query", "translate", "", store.ModeQuery},
		{"empty label falls back to query", "", "", store.ModeQuery},
		{"sticky override wins over label", classifier.LabelQuiz, store.ModeQuizGrader, store.ModeQuizGrader},
		{"sticky override wins over empty label", "", store.ModeQuizGrader, store.ModeQuizGrader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.label, tt.sticky)
			if got != tt.want {
				t.Errorf("Route(%q, %q) = %q, want %q", tt.label, tt.sticky, got, tt.want)
			}
		})
	}
}
