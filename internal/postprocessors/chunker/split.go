package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// Split breaks text into chunks of at most chunkSize characters, where each
// chunk after the first starts with the last overlap characters of the one
// before it. Lengths are counted in runes.
//
// Cut points prefer, in order: the end of a paragraph ("\n\n"), the end of
// a sentence (". ", "! ", "? " or the punctuation before a newline), the end
// of a word, and finally a hard cut at chunkSize. A cut is only taken when
// the chunk still extends past the overlap, so every step makes progress.
//
// Empty or whitespace-only text yields no chunks.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if err := validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	start := 0
	for {
		end := min(start+chunkSize, n)
		if end < n {
			end = cutPoint(runes, start+overlap+1, end)
		}

		chunks = append(chunks, string(runes[start:end]))
		if end >= n {
			break
		}
		start = end - overlap
	}

	return chunks, nil
}

func validate(chunkSize, overlap int) error {
	switch {
	case chunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidConfiguration, chunkSize)
	case overlap < 0:
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidConfiguration, overlap)
	case overlap >= chunkSize:
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidConfiguration, overlap, chunkSize)
	}
	return nil
}

// cutPoint returns the exclusive end of a chunk in [lo, hi].
// Each pass scans backwards so the longest chunk for a boundary kind wins.
func cutPoint(runes []rune, lo, hi int) int {
	for _, isBoundary := range []func([]rune, int) bool{
		paragraphEnd,
		sentenceEnd,
		wordEnd,
	} {
		for cut := hi; cut >= lo; cut-- {
			if isBoundary(runes, cut) {
				return cut
			}
		}
	}
	return hi
}

func paragraphEnd(runes []rune, cut int) bool {
	return cut >= 2 && runes[cut-2] == '\n' && runes[cut-1] == '\n'
}

func sentenceEnd(runes []rune, cut int) bool {
	if cut < 2 {
		return false
	}
	switch runes[cut-2] {
	case '.', '!', '?':
		return runes[cut-1] == ' ' || runes[cut-1] == '\n'
	}
	return false
}

func wordEnd(runes []rune, cut int) bool {
	return cut >= 1 && unicode.IsSpace(runes[cut-1])
}
