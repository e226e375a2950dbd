package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	searchQuery   string
	searchProject string
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic search over an indexed project",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		req := map[string]interface{}{"query": searchQuery, "project": searchProject, "limit": searchLimit}
		if err := postJSON("/search", req, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var smartCmd = &cobra.Command{
	Use:   "smart",
	Short: "Route a query to whichever indexed collection best answers it",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		q := url.Values{"query": {searchQuery}}
		if err := getJSON("/smart/query", q, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var existsComponent string

var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Check whether a component already exists in an indexed project",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		q := url.Values{"component": {existsComponent}, "project": {searchProject}}
		if err := getJSON("/exists", q, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

var complexCmd = &cobra.Command{
	Use:   "complex",
	Short: "Answer a multi-part question by decomposing and synthesizing across collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		req := map[string]string{"query": searchQuery, "project": searchProject}
		if err := postJSON("/complex", req, &resp); err != nil {
			return err
		}
		fmt.Println(resp["response"])
		return nil
	},
}

var (
	violationAction  string
	violationContext string
)

var checkViolationCmd = &cobra.Command{
	Use:   "check-violation",
	Short: "Check whether an action matches a known anti-pattern",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		q := url.Values{"action": {violationAction}, "context": {violationContext}}
		if err := getJSON("/check/violation", q, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, smartCmd, complexCmd} {
		cmd.Flags().StringVar(&searchQuery, "query", "", "search query")
		_ = cmd.MarkFlagRequired("query")
	}
	searchCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "number of source nodes to retrieve")
	_ = searchCmd.MarkFlagRequired("project")
	complexCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name, searches all collections if omitted")

	existsCmd.Flags().StringVar(&existsComponent, "component", "", "component or pattern description")
	existsCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name")
	_ = existsCmd.MarkFlagRequired("component")
	_ = existsCmd.MarkFlagRequired("project")

	checkViolationCmd.Flags().StringVar(&violationAction, "action", "", "action being checked")
	checkViolationCmd.Flags().StringVar(&violationContext, "context", "", "surrounding context")
	_ = checkViolationCmd.MarkFlagRequired("action")
}
