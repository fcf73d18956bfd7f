// Package factcheck scores a generated script against its source paper
// using embedding similarity, chunk by chunk.
package factcheck

import "strings"

// Kind tells which text a chunk came from.
type Kind string

const (
	KindGenerated Kind = "generated"
	KindSource    Kind = "source"
)

// Chunk is a bounded run of consecutive words, the unit of semantic
// comparison. Boundaries always fall between words.
type Chunk struct {
	Kind  Kind
	Index int
	Text  string
}

// SplitWords splits text on whitespace and groups the words into
// consecutive runs of size words each; the final chunk may be shorter.
// Joining the chunk texts with single spaces reconstructs the input modulo
// whitespace normalization. Empty input yields no chunks.
func SplitWords(text string, size int, kind Kind) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Kind:  kind,
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})
	}

	return chunks
}
