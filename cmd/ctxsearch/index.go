package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	indexPath string
	indexName string
	indexMode string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a project's source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if err := postJSON("/index", map[string]string{"path": indexPath, "name": indexName, "mode": indexMode}, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh a previously indexed project",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if err := postJSON("/refresh/project", map[string]string{"path": indexPath, "name": indexName}, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

var indexConversationsCmd = &cobra.Command{
	Use:   "index-conversations",
	Short: "Index a conversation export (NDJSON) into a collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]interface{}
		if err := postJSON("/index/conversations", map[string]string{"path": indexPath, "name": indexName}, &resp); err != nil {
			return err
		}
		fmt.Printf("%+v\n", resp)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{indexCmd, refreshCmd, indexConversationsCmd} {
		cmd.Flags().StringVar(&indexPath, "path", "", "filesystem path to index")
		cmd.Flags().StringVar(&indexName, "name", "", "project name")
		_ = cmd.MarkFlagRequired("path")
		_ = cmd.MarkFlagRequired("name")
	}
	indexCmd.Flags().StringVar(&indexMode, "mode", "", "index mode: vector, graph, hybrid, or auto")
}
