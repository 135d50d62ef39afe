package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the rule set and check every pattern compiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, src, err := a.loadRules(cmd.Context())
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			defer src.Close()

			if list {
				for i, r := range rules.Rules() {
					fmt.Fprintf(a.stdout, "%d\t%s\n", i, r)
				}
			}
			fmt.Fprintf(a.stdout, "ok: %d rules from %s\n", rules.Len(), src.Name())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "print every rule in match order")
	return cmd
}
