package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// answerLinePattern matches key or submission lines like "1. A", "2) b",
// "3: C) mitochondria". Whitespace inside the pattern never crosses a line
// boundary, so a bare "1. A" line cannot swallow the line after it.
var answerLinePattern = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]*[.):\-]?[ \t]*([A-Da-d])\b(?:[.)]?[ \t]*(.*))?$`)

// ParseAnswers extracts numbered answers from a key or a user submission.
// The map is question number to the chosen option letter (upper-cased).
func ParseAnswers(text string) map[int]string {
	answers := make(map[int]string)
	for _, match := range answerLinePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if _, seen := answers[n]; seen {
			continue
		}
		answers[n] = strings.ToUpper(match[2])
	}
	return answers
}

// ScoreReport is the deterministic grading outcome.
type ScoreReport struct {
	Correct    int
	Total      int
	Incorrect  []int // wrong answers, by question number
	Unanswered []int // omitted answers, by question number
}

// String renders the score as "2/5".
func (r ScoreReport) String() string {
	return fmt.Sprintf("%d/%d", r.Correct, r.Total)
}

// Score grades a submission against the answer key. Every key item counts;
// an unanswered item is incorrect, never skipped. The key is ground truth,
// so near-miss answers get zero credit.
func Score(key map[int]string, submission map[int]string) ScoreReport {
	report := ScoreReport{Total: len(key)}

	numbers := make([]int, 0, len(key))
	for n := range key {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		answered, ok := submission[n]
		if !ok || strings.TrimSpace(answered) == "" {
			report.Unanswered = append(report.Unanswered, n)
			continue
		}
		if strings.EqualFold(answered, key[n]) {
			report.Correct++
		} else {
			report.Incorrect = append(report.Incorrect, n)
		}
	}
	return report
}

// LooksLikeSubmission reports whether a user message reads as a set of quiz
// answers rather than a question. Matching the letter-answer pattern is the
// strong signal; short messages that fuzzily contain "answers" also count.
func LooksLikeSubmission(message string) bool {
	if answerLinePattern.MatchString(message) {
		return true
	}
	trimmed := strings.TrimSpace(message)
	if len(trimmed) < 120 && fuzzy.MatchNormalizedFold("my answers", trimmed) {
		return true
	}
	return false
}
