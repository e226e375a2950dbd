package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	docsFramework string
	docsPath      string
	docsURL       string
)

var indexDocsCmd = &cobra.Command{
	Use:   "index-docs",
	Short: "Index a framework's documentation, from a local path or a crawl URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if docsURL != "" {
			q := url.Values{"framework": {docsFramework}, "url": {docsURL}}
			if err := postJSON("/docs/index-framework?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
		} else {
			req := map[string]string{"library_name": docsFramework, "docs_path": docsPath}
			if err := postJSON("/docs/index", req, &resp); err != nil {
				return err
			}
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

var (
	docsQuery        string
	docsExamplesOnly bool
)

var searchDocsCmd = &cobra.Command{
	Use:   "search-docs",
	Short: "Search an indexed framework's documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		req := map[string]interface{}{"query": docsQuery, "library": docsFramework, "examples_only": docsExamplesOnly}
		if err := postJSON("/docs/search", req, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var howtoCmd = &cobra.Command{
	Use:   "howto",
	Short: "Look up a concrete usage pattern in a framework's indexed documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		q := url.Values{"query": {docsQuery}, "framework": {docsFramework}}
		if err := getJSON("/docs/pattern", q, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var listDocsCmd = &cobra.Command{
	Use:   "list-docs",
	Short: "List every framework with indexed documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if err := getJSON("/docs/frameworks", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

func init() {
	indexDocsCmd.Flags().StringVar(&docsFramework, "framework", "", "framework or library name")
	indexDocsCmd.Flags().StringVar(&docsPath, "path", "", "local documentation path")
	indexDocsCmd.Flags().StringVar(&docsURL, "url", "", "seed URL to crawl instead of a local path")
	_ = indexDocsCmd.MarkFlagRequired("framework")

	searchDocsCmd.Flags().StringVar(&docsQuery, "query", "", "documentation query")
	searchDocsCmd.Flags().StringVar(&docsFramework, "framework", "", "indexed framework name")
	searchDocsCmd.Flags().BoolVar(&docsExamplesOnly, "examples-only", false, "bias the query toward code examples")
	_ = searchDocsCmd.MarkFlagRequired("query")
	_ = searchDocsCmd.MarkFlagRequired("framework")

	howtoCmd.Flags().StringVar(&docsQuery, "query", "", "pattern or usage question")
	howtoCmd.Flags().StringVar(&docsFramework, "framework", "", "indexed framework name")
	_ = howtoCmd.MarkFlagRequired("query")
	_ = howtoCmd.MarkFlagRequired("framework")
}
