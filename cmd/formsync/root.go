package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(&commandContext{})
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "formsync",
		Short:         "Link and template form tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newLinkCommand(ctx))
	rootCmd.AddCommand(newTemplateCommand(ctx))
	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	return cmd.Name() == "extract" || cmd.Name() == "help"
}
