package utils

import (
	"github.com/tmc/langchaingo/textsplitter"
)

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with 'overlap' characters preserved at boundaries. Splitting is
// recursive on paragraph, line, sentence and word separators so chunks break
// on natural boundaries instead of mid-word.
func SplitText(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)

	chunks, err := splitter.SplitText(text)
	if err != nil || len(chunks) == 0 {
		// Fall back to strict rune slicing so no content is ever lost.
		return sliceByRunes(text, chunkSize, overlap)
	}
	return chunks
}

func sliceByRunes(text string, chunkSize int, overlap int) []string {
	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == totalLen {
			break
		}
	}
	return chunks
}
