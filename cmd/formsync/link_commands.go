package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsync/pkg/prompt"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/session"
)

func newLinkCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Create or edit link records",
	}
	cmd.AddCommand(newLinkCreateCommand(ctx))
	cmd.AddCommand(newLinkEditCommand(ctx))
	return cmd
}

func newLinkCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a link interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkForm(cmd, ctx, 0)
		},
	}
}

func newLinkEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a stored link interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid link id %q", args[0])
			}
			return runLinkForm(cmd, ctx, id)
		},
	}
}

func runLinkForm(cmd *cobra.Command, ctx *commandContext, recordID int64) error {
	client, err := ctx.recordsClient()
	if err != nil {
		return err
	}
	fetcher, err := ctx.metadataFetcher()
	if err != nil {
		return err
	}

	categories, err := client.Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	s := session.NewLinkSession(cmd.Context(), session.Deps{
		Fetcher:   fetcher,
		Lookup:    client,
		Persister: client,
		Logger:    ctx.log(),
	})
	defer s.Close()

	if recordID > 0 {
		if err := s.Open(recordID); err != nil {
			return err
		}
		if err := s.Wait(); err != nil {
			return err
		}
	}

	form := &prompt.LinkForm{
		Driver:     ctx.promptDriver(),
		Session:    s,
		Categories: categories,
	}
	payload, err := form.Run(cmd.Context())
	if err != nil {
		return err
	}
	printLink(cmd, recordID, payload)
	return nil
}

func printLink(cmd *cobra.Command, recordID int64, payload records.LinkPayload) {
	out := cmd.OutOrStdout()
	if recordID > 0 {
		fmt.Fprintf(out, "Updated link %d\n", recordID)
	} else {
		fmt.Fprintln(out, "Created link")
	}
	fmt.Fprintf(out, "  title: %s\n", payload.Title)
	fmt.Fprintf(out, "  url: %s\n", payload.LinkURL)
	if payload.ThumbnailURL != "" {
		fmt.Fprintf(out, "  thumbnail: %s\n", payload.ThumbnailURL)
	}
}
