package reader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
)

// ConversationReader loads chat transcripts from a newline-delimited JSON
// file. Each line is either a single message object, an array of turns
// forming one conversation, or the whole file is a single export document
// containing many conversations.
type ConversationReader struct {
	logger *logging.Logger
}

// NewConversationReader builds a ConversationReader. logger may be nil, in
// which case malformed-line warnings are dropped silently.
func NewConversationReader(logger *logging.Logger) *ConversationReader {
	return &ConversationReader{logger: logger}
}

type conversationMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type exportDocument struct {
	Conversations []struct {
		Messages []conversationMessage `json:"messages"`
	} `json:"conversations"`
}

func (r *ConversationReader) LoadDocuments(ctx context.Context, source string) ([]Document, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("reading conversation file %s", source), err)
	}

	if docs, ok := r.tryExportDocument(source, data); ok {
		return docs, nil
	}

	return r.loadNDJSON(ctx, source, data)
}

// tryExportDocument handles a whole-file export containing a top-level
// "conversations" array, each with a "messages" array.
func (r *ConversationReader) tryExportDocument(source string, data []byte) ([]Document, bool) {
	var export exportDocument
	if err := json.Unmarshal(data, &export); err != nil || export.Conversations == nil {
		return nil, false
	}

	var docs []Document
	for ci, conv := range export.Conversations {
		for mi, msg := range conv.Messages {
			docs = append(docs, Document{
				ID:   fmt.Sprintf("%s#%d.%d", source, ci, mi),
				Text: formatTurn(msg.Role, flattenContent(msg.Content)),
				Metadata: map[string]interface{}{
					"role":              msg.Role,
					"conversation_index": ci,
					"turn_index":         mi,
					"file":               source,
				},
			})
		}
	}
	return docs, len(docs) > 0
}

// loadNDJSON handles the line-oriented form: each line is either a single
// message object, or an array of messages forming one conversation.
func (r *ConversationReader) loadNDJSON(ctx context.Context, source string, data []byte) ([]Document, error) {
	var docs []Document
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			var turns []conversationMessage
			if err := json.Unmarshal([]byte(line), &turns); err != nil {
				r.warn(source, lineNo, err)
				continue
			}
			for ti, msg := range turns {
				docs = append(docs, Document{
					ID:   fmt.Sprintf("%s#%d.%d", source, lineNo, ti),
					Text: formatTurn(msg.Role, flattenContent(msg.Content)),
					Metadata: map[string]interface{}{
						"role":       msg.Role,
						"line":       lineNo,
						"turn_index": ti,
						"file":       source,
					},
				})
			}
			continue
		}

		var msg conversationMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			r.warn(source, lineNo, err)
			continue
		}
		docs = append(docs, Document{
			ID:   fmt.Sprintf("%s#%d", source, lineNo),
			Text: formatTurn(msg.Role, flattenContent(msg.Content)),
			Metadata: map[string]interface{}{
				"role": msg.Role,
				"line": lineNo,
				"file": source,
			},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("scanning %s", source), err)
	}
	return docs, nil
}

func (r *ConversationReader) warn(source string, line int, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(context.Background(), "skipping malformed conversation line",
		zap.String("file", source), zap.Int("line", line), zap.Error(err))
}

// formatTurn renders a single conversation turn the way a human transcript
// reads: "[role]: content".
func formatTurn(role, content string) string {
	if role == "" {
		return content
	}
	return fmt.Sprintf("[%s]: %s", role, content)
}

// flattenContent accepts either a plain JSON string or an array of
// multi-part content objects (each with a "text" field), joining parts
// with spaces.
func flattenContent(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}
