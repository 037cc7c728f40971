package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsync/pkg/linkid"
)

func newExtractCommand() *cobra.Command {
	var thumbnail bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Print the video identifier contained in a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := linkid.Extract(args[0])
			if id == "" {
				return fmt.Errorf("no video identifier in %q", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, id)
			if thumbnail {
				fmt.Fprintln(out, linkid.ThumbnailURL(id))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "Also print the default thumbnail URL")
	return cmd
}
