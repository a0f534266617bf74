package main

import (
	"fmt"

	"github.com/dshills/zellascore/internal/profile"
	"github.com/spf13/cobra"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in scoring profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := profile.List()
			if err != nil {
				return exitError(3, "failed to list profiles: %v", err)
			}
			out := cmd.OutOrStdout()
			for i, name := range names {
				p, err := profile.LoadBuiltin(name)
				if err != nil {
					return exitError(3, "failed to load profile: %v", err)
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, profile.Format(p))
			}
			return nil
		},
	}
}
