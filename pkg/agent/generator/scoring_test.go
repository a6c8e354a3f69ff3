package generator

import (
	"reflect"
	"testing"
)

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[int]string
	}{
		{
			"dot separator",
			"1. A\n2. B",
			map[int]string{1: "A", 2: "B"},
		},
		{
			"consecutive bare letter lines",
			"1. A\n2. B\n3. D",
			map[int]string{1: "A", 2: "B", 3: "D"},
		},
		{
			"five-answer submission keeps every line",
			"1. A\n2. B\n3. D\n4. C\n5. A",
			map[int]string{1: "A", 2: "B", 3: "D", 4: "C", 5: "A"},
		},
		{
			"paren separator and lowercase",
			"1) a\n2) b",
			map[int]string{1: "A", 2: "B"},
		},
		{
			"colon separator with trailing text",
			"3: C) mitochondria",
			map[int]string{3: "C"},
		},
		{
			"key lines with explanations",
			"1. A - the cell wall\n2. D - ribosomes do this",
			map[int]string{1: "A", 2: "D"},
		},
		{
			"duplicate question keeps first answer",
			"1. A\n1. B",
			map[int]string{1: "A"},
		},
		{
			"prose without answers",
			"I think the quiz was hard.",
			map[int]string{},
		},
		{
			"letter outside A-D ignored",
			"1. E\n2. C",
			map[int]string{2: "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnswers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAnswers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	key := map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"}

	tests := []struct {
		name           string
		submission     map[int]string
		wantCorrect    int
		wantIncorrect  []int
		wantUnanswered []int
	}{
		{
			"all correct",
			map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"},
			5, nil, nil,
		},
		{
			"two right, one wrong, two unanswered",
			map[int]string{1: "A", 2: "B", 3: "D"},
			2, []int{3}, []int{4, 5},
		},
		{
			"case-insensitive comparison",
			map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "a"},
			5, nil, nil,
		},
		{
			"empty submission counts everything unanswered",
			map[int]string{},
			0, nil, []int{1, 2, 3, 4, 5},
		},
		{
			"extra answers beyond the key are ignored",
			map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A", 6: "B"},
			5, nil, nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(key, tt.submission)
			if got.Correct != tt.wantCorrect {
				t.Errorf("Correct = %d, want %d", got.Correct, tt.wantCorrect)
			}
			if got.Total != len(key) {
				t.Errorf("Total = %d, want %d", got.Total, len(key))
			}
			if !reflect.DeepEqual(got.Incorrect, tt.wantIncorrect) {
				t.Errorf("Incorrect = %v, want %v", got.Incorrect, tt.wantIncorrect)
			}
			if !reflect.DeepEqual(got.Unanswered, tt.wantUnanswered) {
				t.Errorf("Unanswered = %v, want %v", got.Unanswered, tt.wantUnanswered)
			}
		})
	}
}

func TestScoreParsedSubmission(t *testing.T) {
	// Key and submission both go through ParseAnswers, exactly as the grader
	// uses them: two right, one wrong, two omitted must come out as 2/5.
	key := ParseAnswers("1. A\n2. B\n3. C\n4. D\n5. A")
	submission := ParseAnswers("1. A\n2. B\n3. D")

	report := Score(key, submission)
	if report.String() != "2/5" {
		t.Errorf("score = %s, want 2/5", report.String())
	}
	if len(report.Incorrect) != 1 || report.Incorrect[0] != 3 {
		t.Errorf("Incorrect = %v, want [3]", report.Incorrect)
	}
	if len(report.Unanswered) != 2 {
		t.Errorf("Unanswered = %v, want [4 5]", report.Unanswered)
	}
}

func TestScoreReportString(t *testing.T) {
	r := ScoreReport{Correct: 2, Total: 5}
	if got := r.String(); got != "2/5" {
		t.Errorf("String() = %q, want %q", got, "2/5")
	}
}

func TestLooksLikeSubmission(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"numbered letter answers", "1. A\n2. C\n3. B", true},
		{"single answer line", "2) b", true},
		{"short message mentioning answers", "here are my answers", true},
		{"plain question", "what is the powerhouse of the cell?", false},
		{"empty message", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeSubmission(tt.message); got != tt.want {
				t.Errorf("LooksLikeSubmission(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}
