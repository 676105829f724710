package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <profile-id>",
	Short: "Analyze a stored profile document and save the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("profile-id", args[0])
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := env.Store.GetProfile(cmd.Context(), id)
		if err != nil {
			return err
		}
		if profile == nil {
			return eris.Errorf("profile %d not found", id)
		}

		fields, ok := env.Analysis.Analyze(cmd.Context(), profile)
		if !ok {
			return eris.Errorf("failed to analyze profile %d", id)
		}
		return writeJSON(cmd.OutOrStdout(), fields)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
