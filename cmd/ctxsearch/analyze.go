package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var violationsCmd = &cobra.Command{
	Use:   "violations",
	Short: "Scan an indexed project for SOLID/DRY architecture violations",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if err := getJSON("/violations/"+searchProject, nil, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

var (
	suggestTask     string
	suggestExisting string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a third-party library for a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		q := url.Values{"task": {suggestTask}, "existing": {suggestExisting}}
		if err := getJSON("/analyze/component/library_suggest", q, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Extract business rules from an indexed project",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]string
		q := url.Values{"project": {searchProject}, "query": {searchQuery}}
		if err := getJSON("/analyze/component/business_rules", q, &resp); err != nil {
			return err
		}
		fmt.Println(resp["result"])
		return nil
	},
}

var diagramFormat string

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Render an indexed project's architecture diagram (class-diagram layout)",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"format": {diagramFormat}}
		var raw []byte
		if err := getRaw("/graph/"+searchProject+"/visualize", q, &raw); err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	},
}

func init() {
	violationsCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name")
	_ = violationsCmd.MarkFlagRequired("project")

	suggestCmd.Flags().StringVar(&suggestTask, "task", "", "task the library should help accomplish")
	suggestCmd.Flags().StringVar(&suggestExisting, "existing", "", "comma-separated libraries already in use")
	_ = suggestCmd.MarkFlagRequired("task")

	businessCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name")
	businessCmd.Flags().StringVar(&searchQuery, "query", "business rules", "probe query")
	_ = businessCmd.MarkFlagRequired("project")

	diagramCmd.Flags().StringVar(&searchProject, "project", "", "indexed project name")
	diagramCmd.Flags().StringVar(&diagramFormat, "format", "mermaid", "mermaid or plantuml")
	_ = diagramCmd.MarkFlagRequired("project")
}
