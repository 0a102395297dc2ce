package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/northcross/aviso/internal/engine"
	"github.com/northcross/aviso/internal/model"
)

var (
	checkOrigin   string
	checkIndustry string
)

var checkCmd = &cobra.Command{
	Use:   "check CODE [CODE...]",
	Short: "Resolve one or more tariff codes and print the decisions as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		origin := checkOrigin
		if origin == "" {
			origin = cfg.Server.DefaultOrigin
		}
		if _, err := model.ParseOrigin(origin); err != nil {
			return err
		}

		e, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return runCheck(cmd.OutOrStdout(), e, origin, checkIndustry, args)
	},
}

func runCheck(w io.Writer, e *engine.Engine, origin, industryName string, codes []string) error {
	decisions := make([]model.Decision, 0, len(codes))
	for _, code := range codes {
		d, err := e.Resolve(origin, industryName, code)
		if err != nil {
			return eris.Wrapf(err, "resolve %s", code)
		}
		decisions = append(decisions, d)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(decisions)
}

func init() {
	checkCmd.Flags().StringVar(&checkOrigin, "origin", "", "jurisdiction: mx or us (default from config)")
	checkCmd.Flags().StringVar(&checkIndustry, "industria", "", "industry sector")
	_ = checkCmd.MarkFlagRequired("industria")
	rootCmd.AddCommand(checkCmd)
}
