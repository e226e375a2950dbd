package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

// WebCrawlReader performs a breadth-first crawl of same-host pages starting
// from a seed URL, up to a configured depth.
type WebCrawlReader struct {
	client *http.Client
	depth  int
}

// NewWebCrawlReader builds a WebCrawlReader bounded to maxDepth hops from
// the seed URL.
func NewWebCrawlReader(maxDepth int) *WebCrawlReader {
	if maxDepth <= 0 {
		maxDepth = 2
	}
	return &WebCrawlReader{client: &http.Client{}, depth: maxDepth}
}

type crawlFrontier struct {
	url   string
	depth int
}

func (r *WebCrawlReader) LoadDocuments(ctx context.Context, seed string) ([]Document, error) {
	seedURL, err := url.Parse(seed)
	if err != nil {
		return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("parsing seed url %s", seed), err)
	}

	visited := map[string]bool{}
	queue := []crawlFrontier{{url: seed, depth: 0}}
	var docs []Document

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		cur := queue[0]
		queue = queue[1:]
		if visited[cur.url] {
			continue
		}
		visited[cur.url] = true

		body, links, err := r.fetch(ctx, cur.url)
		if err != nil {
			continue // unreachable individual page is skipped, not fatal
		}

		docs = append(docs, Document{
			ID:       cur.url,
			Text:     body,
			Metadata: map[string]interface{}{"url": cur.url, "depth": cur.depth},
		})

		if cur.depth >= r.depth {
			continue
		}
		for _, link := range links {
			resolved, err := resolveLink(seedURL, link)
			if err != nil || resolved == "" || visited[resolved] {
				continue
			}
			queue = append(queue, crawlFrontier{url: resolved, depth: cur.depth + 1})
		}
	}

	if len(docs) == 0 {
		return nil, apperr.New(apperr.ReadErrorKind, fmt.Sprintf("crawl of %s produced no pages", seed))
	}
	return docs, nil
}

func (r *WebCrawlReader) fetch(ctx context.Context, target string) (string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	text, links := extractTextAndLinks(data)
	return text, links, nil
}

// extractTextAndLinks walks the HTML tokenizer once, collecting text nodes
// and every href attribute on an anchor tag.
func extractTextAndLinks(body []byte) (string, []string) {
	tokenizer := html.NewTokenizer(strings.NewReader(string(body)))
	var text strings.Builder
	var links []string

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return text.String(), links
		case html.TextToken:
			text.Write(tokenizer.Text())
			text.WriteByte(' ')
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					links = append(links, attr.Val)
				}
			}
		}
	}
}

func resolveLink(base *url.URL, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(u)
	if resolved.Host != base.Host {
		return "", nil
	}
	resolved.Fragment = ""
	return resolved.String(), nil
}
