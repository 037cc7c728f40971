package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/composite"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/submission"
)

// errInvalidTemplate is returned after findings have been printed.
var errInvalidTemplate = errors.New("template has validation findings")

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Validate and save record templates",
	}
	cmd.AddCommand(newTemplateValidateCommand())
	cmd.AddCommand(newTemplateSubmitCommand(ctx))
	return cmd
}

func newTemplateValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Report validation findings for a template document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			findings := composite.Validate(doc)
			out := cmd.OutOrStdout()
			if len(findings) == 0 {
				fmt.Fprintf(out, "%s: ok (%d questions)\n", args[0], len(doc.Items))
				return nil
			}
			for _, finding := range findings {
				fmt.Fprintf(out, "%s: [%s] %s\n", args[0], finding.Kind, finding.Message())
			}
			return errInvalidTemplate
		},
	}
}

func newTemplateSubmitCommand(ctx *commandContext) *cobra.Command {
	var templateID int64

	cmd := &cobra.Command{
		Use:   "submit <file.yaml>",
		Short: "Validate a template document and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.recordsClient()
			if err != nil {
				return err
			}

			s := session.NewTemplateSession(session.Deps{Persister: client, Logger: ctx.log()}, templateID, doc)
			defer s.Close()

			payload, err := s.Submit(cmd.Context())
			out := cmd.OutOrStdout()
			if err != nil {
				var rejection *submission.Rejection
				if errors.As(err, &rejection) {
					for _, msg := range rejection.Messages() {
						fmt.Fprintln(out, msg)
					}
					return errInvalidTemplate
				}
				return err
			}
			if templateID > 0 {
				fmt.Fprintf(out, "Updated template %d (%d questions)\n", templateID, len(payload.Questions))
			} else {
				fmt.Fprintf(out, "Created template %q (%d questions)\n", payload.Title, len(payload.Questions))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&templateID, "id", 0, "Existing template id to update")
	return cmd
}

func readDocument(path string) (composite.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return composite.Document{}, fmt.Errorf("read template: %w", err)
	}
	var doc composite.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return composite.Document{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	return doc, nil
}
