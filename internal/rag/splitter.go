package rag

import (
	"strings"

	"github.com/ziadkadry99/kb-assist/internal/llm"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

const sentenceSeparator = ". "

// SplitDocument packs sentences into chunks of at most chunkSize estimated
// tokens. Each chunk after the first starts with the last overlap words of
// the chunk before it. A single sentence longer than chunkSize becomes its
// own oversized chunk.
func SplitDocument(text string, chunkSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var (
		chunks  []string
		current strings.Builder
	)
	for _, sentence := range strings.Split(text, sentenceSeparator) {
		if llm.EstimateTokens(current.String()+sentence) <= chunkSize {
			current.WriteString(sentence)
			current.WriteString(sentenceSeparator)
			continue
		}

		prev := current.String()
		current.Reset()
		if prev != "" {
			chunks = append(chunks, strings.TrimSpace(prev))
			if tail := lastWords(prev, overlap); tail != "" {
				current.WriteString(tail)
				current.WriteString(" ")
			}
		}
		current.WriteString(sentence)
		current.WriteString(sentenceSeparator)
	}

	if last := strings.TrimSpace(current.String()); last != "" {
		chunks = append(chunks, last)
	}
	return chunks
}

func lastWords(s string, n int) string {
	if n == 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
