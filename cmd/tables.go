package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/northcross/aviso/internal/reference"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Load the reference tables and print their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return writeStats(cmd.OutOrStdout(), e.Store().Stats())
	},
}

func writeStats(w io.Writer, stats []reference.TableStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORIGIN\tSCHEDULE\tAVAILABLE\tROWS\tINDETERMINATE\tSKIPPED\tSOURCE\tREASON")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\t%d\t%s\t%s\n",
			st.Origin, st.Schedule, st.Available, st.Rows, st.Indeterminate, st.Skipped,
			orDash(st.Source), orDash(st.Reason))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
