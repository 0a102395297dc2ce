package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/northcross/aviso/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the chapter rules and known industries",
	RunE: func(cmd *cobra.Command, args []string) error {
		canon, err := loadCanonicalizer(cfg)
		if err != nil {
			return err
		}
		return writeRules(cmd.OutOrStdout(), rules.Rules(), canon.Names())
	},
}

func writeRules(w io.Writer, rs []rules.ChapterRule, industries []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHAPTERS\tINDUSTRIA\tAVISO")
	for _, r := range rs {
		chapters := fmt.Sprintf("%02d", r.From)
		if r.To != r.From {
			chapters = fmt.Sprintf("%02d-%02d", r.From, r.To)
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\n", chapters, r.Industry, r.Result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Industrias:")
	for _, name := range industries {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
