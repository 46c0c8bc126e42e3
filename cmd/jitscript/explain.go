package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jitscript/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain [CODE]",
	Short: "Describe diagnostic codes (all of them when CODE is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		colored, err := useColor(cmd, stdoutFile(cmd))
		if err != nil {
			return err
		}
		codes := diag.Codes()
		if len(args) == 1 {
			c, ok := diag.ParseID(args[0])
			if !ok {
				return fmt.Errorf("unknown diagnostic code %q", args[0])
			}
			codes = []diag.Code{c}
		}
		return explainCodes(cmd.OutOrStdout(), codes, colored)
	},
}

func explainCodes(w io.Writer, codes []diag.Code, colored bool) error {
	id := color.New(color.Bold)
	if colored {
		id.EnableColor()
	} else {
		id.DisableColor()
	}
	for _, c := range codes {
		if _, err := fmt.Fprintf(w, "%s  %s\n", id.Sprint(c.ID()), c.Title()); err != nil {
			return err
		}
	}
	return nil
}
