package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevin07696/error-mapping/internal/adapters/rulesource"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the PostgreSQL table definition for the rules table",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			src := rulesource.NewPostgresSource(nil, a.cfg.Database.Table)
			_, err := fmt.Fprintln(a.stdout, src.SchemaSQL()+";")
			return err
		},
	}
}
