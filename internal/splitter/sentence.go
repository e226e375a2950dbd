package splitter

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

// SentenceSplitter detects sentence boundaries with neurosnap/sentences and
// packs consecutive sentences into chunks bounded by ChunkSize characters,
// carrying ChunkOverlap characters of trailing context into the next chunk.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int

	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSentenceSplitter builds a SentenceSplitter using an English sentence
// boundary model.
func NewSentenceSplitter(chunkSize, chunkOverlap int) (*SentenceSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence tokenizer: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &SentenceSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		tokenizer:    tokenizer,
	}, nil
}

func (s *SentenceSplitter) Split(doc reader.Document) []Node {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil
	}

	sents := s.tokenizer.Tokenize(text)
	var nodes []Node
	chunkIndex := 0

	var cur strings.Builder
	var tail string

	flush := func() {
		chunk := strings.TrimSpace(cur.String())
		if chunk == "" {
			return
		}
		nodes = append(nodes, Node{
			ID:         fmt.Sprintf("%s#%d", doc.ID, chunkIndex),
			DocRef:     doc.ID,
			Text:       chunk,
			ChunkIndex: chunkIndex,
			Metadata:   mergeMetadata(doc.Metadata, chunkIndex),
		})
		chunkIndex++
		tail = overlapTail(chunk, s.ChunkOverlap)
		cur.Reset()
		if tail != "" {
			cur.WriteString(tail)
			cur.WriteByte(' ')
		}
	}

	for _, sent := range sents {
		piece := strings.TrimSpace(sent.Text)
		if piece == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(piece)+1 > s.ChunkSize {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}
	flush()

	return nodes
}

// overlapTail returns the last n characters of chunk, used to seed the next
// chunk with trailing context. A chunk of n bytes or fewer yields "", so it
// carries no overlap into the next chunk.
func overlapTail(chunk string, n int) string {
	if n <= 0 || len(chunk) <= n {
		return ""
	}
	runes := []rune(chunk)
	if len(runes) <= n {
		return chunk
	}
	return string(runes[len(runes)-n:])
}
