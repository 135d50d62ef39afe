package main

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kevin07696/error-mapping/internal/mapping"
	svc "github.com/kevin07696/error-mapping/internal/services/classification"
	"github.com/kevin07696/error-mapping/pkg/observability"
)

func newClassifyCmd(a *app) *cobra.Command {
	var code, description, state string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single provider result",
		Example: `  errmap classify -r rules.json --code 05 --description "Do not honor"
  errmap classify --source postgres --code 91 --state auth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics := observability.NewClassificationMetrics(prometheus.NewRegistry())
			service, src, err := a.newService(cmd.Context(), metrics)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			defer src.Close()

			// unset flags stay absent, which is not the same as empty
			var req mapping.Request
			if cmd.Flags().Changed("code") {
				req.Code = &code
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("state") {
				req.State = &state
			}

			failure, err := service.Classify(cmd.Context(), req)
			res := newResult(failure, err)

			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(res); encErr != nil {
				return &exitError{code: exitFailure, err: encErr}
			}

			switch res.Outcome {
			case svc.OutcomeMapped:
				return nil
			case svc.OutcomeError:
				return &exitError{code: exitFailure, err: err}
			default:
				return &exitError{code: exitSignal}
			}
		},
	}

	cmd.Flags().StringVarP(&code, "code", "c", "", "provider result code")
	cmd.Flags().StringVarP(&description, "description", "d", "", "provider result description")
	cmd.Flags().StringVarP(&state, "state", "s", "", "operation state")
	return cmd
}
