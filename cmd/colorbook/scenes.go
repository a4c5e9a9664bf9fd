package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phanxgames/colorbook/internal/scenes"
)

func newScenesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the predefined pages and saved drawings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			available := map[string]bool{}
			for _, sc := range a.library().Available() {
				available[sc.Keyword] = true
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEYWORD\tASSET\tSTATUS")
			for _, sc := range scenes.Builtin {
				status := "missing"
				if available[sc.Keyword] {
					status = "ok"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", sc.Keyword, sc.Asset(), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			docs, err := a.documents()
			if err != nil {
				return err
			}
			keys, err := docs.Keys(cmd.Context())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nSaved drawings:")
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+k)
			}
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload file",
		Short: "Add an image as a new page and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			up, err := a.uploads()
			if err != nil {
				return err
			}
			key, err := up.Add(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}
