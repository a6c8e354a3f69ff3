package generator

import (
	"strings"
	"testing"

	"ai-studypartner-be/pkg/store"
)

func TestBuildCandidateBlock(t *testing.T) {
	docs := []store.Document{
		{Source: "faculty/smith.md", Content: "Dr. Smith works on distributed systems."},
		{Source: "faculty/jones.md", Content: "Dr. Jones works on compilers."},
		{Content: "Untagged bio."},
	}

	t.Run("renders source prefixes", func(t *testing.T) {
		block := BuildCandidateBlock(docs, 10000)
		lines := strings.Split(block, "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 candidate lines, got %d: %q", len(lines), block)
		}
		if !strings.HasPrefix(lines[0], "- faculty/smith.md: ") {
			t.Errorf("first line = %q", lines[0])
		}
		if lines[2] != "- Untagged bio." {
			t.Errorf("untagged line = %q", lines[2])
		}
	})

	t.Run("drops whole trailing candidates past the limit", func(t *testing.T) {
		limit := len("- faculty/smith.md: Dr. Smith works on distributed systems.") + 5
		block := BuildCandidateBlock(docs, limit)
		if strings.Contains(block, "Jones") {
			t.Errorf("second candidate should have been dropped: %q", block)
		}
		if !strings.Contains(block, "Smith") {
			t.Errorf("first candidate must survive: %q", block)
		}
	})

	t.Run("first candidate included even when oversized", func(t *testing.T) {
		block := BuildCandidateBlock(docs[:1], 5)
		if !strings.Contains(block, "Smith") {
			t.Errorf("oversized first candidate must still be included, got %q", block)
		}
	})

	t.Run("no candidates yields empty block", func(t *testing.T) {
		if block := BuildCandidateBlock(nil, 10000); block != "" {
			t.Errorf("expected empty block, got %q", block)
		}
	})
}
