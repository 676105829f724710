package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/leads"
)

var leadsCmd = &cobra.Command{
	Use:   "leads <company-id>",
	Short: "Propose and store scored sales leads for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("company-id", args[0])
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Leads.Find(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if res.Status == leads.StatusError {
			return eris.New(res.Message)
		}
		return nil
	},
}

func parseIDArg(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, eris.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(leadsCmd)
}
