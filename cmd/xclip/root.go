package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var cookieFlag string
	var debugFlag bool

	ctx := newCommandContext(&configFlag, &cookieFlag, &debugFlag)

	rootCmd := &cobra.Command{
		Use:           "xclip",
		Short:         "Resolve X posts into downloadable media",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&cookieFlag, "cookie", "", "Session cookie (auth_token=...; ct0=...) for age-restricted posts")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log resolver state transitions to stderr")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newVariantsCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))

	return rootCmd
}
