package splitter

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

const (
	codeWindowLines  = 40
	codeOverlapLines = 15
	codeMaxChars     = 1500
)

// CodeSplitter chunks source files by a fixed, overlapping line window,
// further splitting any window that exceeds the hard character cap.
type CodeSplitter struct {
	WindowLines  int
	OverlapLines int
	MaxChars     int
}

// NewCodeSplitter builds a CodeSplitter using the spec defaults.
func NewCodeSplitter() *CodeSplitter {
	return &CodeSplitter{
		WindowLines:  codeWindowLines,
		OverlapLines: codeOverlapLines,
		MaxChars:     codeMaxChars,
	}
}

func (s *CodeSplitter) Split(doc reader.Document) []Node {
	lines := strings.Split(doc.Text, "\n")
	if len(lines) == 0 {
		return nil
	}

	step := s.WindowLines - s.OverlapLines
	if step <= 0 {
		step = s.WindowLines
	}

	var nodes []Node
	chunkIndex := 0
	for start := 0; start < len(lines); start += step {
		end := start + s.WindowLines
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[start:end], "\n")

		for _, piece := range capChars(window, s.MaxChars) {
			nodes = append(nodes, Node{
				ID:         fmt.Sprintf("%s#%d", doc.ID, chunkIndex),
				DocRef:     doc.ID,
				Text:       piece,
				ChunkIndex: chunkIndex,
				Metadata:   mergeMetadata(doc.Metadata, chunkIndex),
			})
			chunkIndex++
		}

		if end == len(lines) {
			break
		}
	}

	return nodes
}

// capChars splits text into pieces no longer than max bytes (as len counts
// them), breaking on rune boundaries so multi-byte characters are never
// split mid-rune.
func capChars(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var pieces []string
	runes := []rune(text)
	var cur strings.Builder
	for _, r := range runes {
		if cur.Len()+len(string(r)) > max && cur.Len() > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
