package generator

import (
	"context"
	"strings"

	"ai-studypartner-be/pkg/agent/retrieval"
	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/agent/toolloop"
	"ai-studypartner-be/pkg/store"

	"github.com/samber/lo"
)

const advisorInstruction = `You are an academic advisor matcher. Below is the list of faculty candidates retrieved for the student's interests.
Rules:
- Recommend exactly ONE candidate, and only from the list below. Never invent or name anyone absent from the list.
- Explain why that candidate's research matches the student's interests.
- You may use the faculty_lookup tool only to fill in missing contact or lab details for your chosen candidate. Do not use it to find other people.
- If the list is empty, say that no matching faculty were found.`

// advisorContextCap bounds the candidate block handed to the model. The block
// is cut by whole candidates, never mid-candidate.
const advisorContextCap = 24000

// AdvisorGenerator matches the student to one faculty member from the
// reference corpus.
type AdvisorGenerator struct {
	loop *toolloop.Loop
}

func NewAdvisorGenerator(loop *toolloop.Loop) *AdvisorGenerator {
	return &AdvisorGenerator{loop: loop}
}

func (g *AdvisorGenerator) Mode() string { return store.ModeAdvisor }

func (g *AdvisorGenerator) Generate(ctx context.Context, st state.TurnState, docs []store.Document, contextBlock string) (*Result, error) {
	block := BuildCandidateBlock(docs, advisorContextCap)
	if block == "" {
		// No reference hits and no fallback exists for this scope; let the
		// model say so instead of failing the turn.
		block = retrieval.NoContextMarker
	}

	history := withSystemContext(st.History, advisorInstruction+"\n\nCandidates:\n"+block, "")
	response, err := g.loop.Run(ctx, history, []string{"faculty_lookup"})
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}

// BuildCandidateBlock renders retrieved candidates into one block under the
// character limit, dropping whole trailing candidates once the limit is hit.
// The first candidate is always included even if oversized.
func BuildCandidateBlock(docs []store.Document, limit int) string {
	entries := lo.Map(docs, func(d store.Document, _ int) string {
		if d.Source != "" {
			return "- " + d.Source + ": " + d.Content
		}
		return "- " + d.Content
	})

	var b strings.Builder
	for _, entry := range entries {
		if b.Len() > 0 && b.Len()+len(entry)+1 > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(entry)
	}
	return b.String()
}
