package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

// docSubtrees are the paths GitHubReader restricts itself to by default,
// since most repositories keep documentation under one of these.
var docSubtrees = []string{"docs/", "documentation/", "doc/"}

// GitHubReader loads documentation files out of a GitHub repository's tree
// via the REST API, without cloning.
type GitHubReader struct {
	client *github.Client
}

// NewGitHubReader builds a GitHubReader. token may be empty for public
// repositories, subject to the API's unauthenticated rate limit. When set,
// it authenticates via an oauth2 static token source, same as the rest of
// the fleet's GitHub clients.
func NewGitHubReader(token string) *GitHubReader {
	if token == "" {
		return &GitHubReader{client: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubReader{client: github.NewClient(tc)}
}

// LoadDocuments loads every file under the default documentation subtrees
// of "owner/repo", trying the main branch first and falling back to master.
func (r *GitHubReader) LoadDocuments(ctx context.Context, source string) ([]Document, error) {
	parts := strings.SplitN(source, "/", 2)
	if len(parts) != 2 {
		return nil, apperr.New(apperr.ReadErrorKind, fmt.Sprintf("invalid github source %q, want owner/repo", source))
	}
	owner, repo := parts[0], parts[1]

	tree, _, err := r.client.Git.GetTree(ctx, owner, repo, "main", true)
	if err != nil {
		tree, _, err = r.client.Git.GetTree(ctx, owner, repo, "master", true)
		if err != nil {
			return nil, apperr.Wrap(apperr.ReadErrorKind, fmt.Sprintf("fetching tree for %s", source), err)
		}
	}

	var docs []Document
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if !underAnySubtree(path) {
			continue
		}

		content, _, _, err := r.client.Repositories.GetContents(ctx, owner, repo, path, nil)
		if err != nil || content == nil {
			continue // unreadable individual file is skipped, not fatal
		}
		text, err := content.GetContent()
		if err != nil {
			continue
		}

		docs = append(docs, Document{
			ID:   path,
			Text: text,
			Metadata: map[string]interface{}{
				"repo": source,
				"file": path,
			},
		})
	}

	return docs, nil
}

func underAnySubtree(path string) bool {
	for _, prefix := range docSubtrees {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
