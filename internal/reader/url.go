package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

// URLReader fetches a single page and returns it as one Document.
type URLReader struct {
	client *http.Client
}

// NewURLReader builds a URLReader. Its client sets no timeout of its own;
// a fetch is bounded only by the ctx passed to LoadDocuments.
func NewURLReader() *URLReader {
	return &URLReader{client: &http.Client{}}
}

func (r *URLReader) LoadDocuments(ctx context.Context, source string) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, "building request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("fetching %s", source), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.ReadErrorKind, fmt.Sprintf("fetching %s: status %d", source, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("reading body of %s", source), err)
	}

	return []Document{{
		ID:       source,
		Text:     string(body),
		Metadata: map[string]interface{}{"url": source},
	}}, nil
}
