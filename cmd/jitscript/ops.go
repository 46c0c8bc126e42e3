package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"jitscript/internal/driver"
	"jitscript/internal/ops"
	"jitscript/internal/types"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Inspect and cache the operator registry",
}

var opsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print registered operator schemas",
	Args:  cobra.NoArgs,
	RunE:  runOpsList,
}

var opsCacheCmd = &cobra.Command{
	Use:   "cache <out.mp>",
	Short: "Write a msgpack snapshot of the operator registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpsCache,
}

func init() {
	for _, c := range []*cobra.Command{opsListCmd, opsCacheCmd} {
		c.Flags().StringSlice("library", nil, "extra operator library (TOML); repeatable")
	}
	opsListCmd.Flags().String("cache", "", "read this registry snapshot instead of the libraries")
	opsListCmd.Flags().String("namespace", "", "only list operators of this namespace")
	opsCmd.AddCommand(opsListCmd)
	opsCmd.AddCommand(opsCacheCmd)
}

func runOpsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	libs, err := libraryFlags(cmd, cfg)
	if err != nil {
		return err
	}
	cache, err := cacheFlag(cmd, cfg)
	if err != nil {
		return err
	}
	ns, err := cmd.Flags().GetString("namespace")
	if err != nil {
		return err
	}
	colored, err := useColor(cmd, stdoutFile(cmd))
	if err != nil {
		return err
	}
	in := types.NewInterner()
	reg, _, err := driver.BuildRegistry(cmd.Context(), in, driver.RegistryOptions{Libraries: libs, Cache: cache})
	if err != nil {
		return err
	}
	return listOps(cmd.OutOrStdout(), reg, ns, colored)
}

// listOps prints one schema per line with the qualified names aligned in a
// column, then the namespace aliases.
func listOps(w io.Writer, reg *ops.Registry, ns string, colored bool) error {
	nsColor := color.New(color.FgCyan)
	docColor := color.New(color.FgHiBlack)
	if colored {
		nsColor.EnableColor()
		docColor.EnableColor()
	} else {
		nsColor.DisableColor()
		docColor.DisableColor()
	}

	schemas := reg.All()
	if ns != "" {
		schemas = slices.DeleteFunc(schemas, func(s *ops.Schema) bool { return s.Name.Namespace() != ns })
	}
	width := 0
	for _, s := range schemas {
		width = max(width, runewidth.StringWidth(qualName(s)))
	}
	in := reg.Types()
	for _, s := range schemas {
		name := qualName(s)
		rest := strings.TrimPrefix(s.Signature(in), name)
		pad := strings.Repeat(" ", width-runewidth.StringWidth(name))
		line := nsColor.Sprint(s.Name.Namespace()) + "::" + strings.TrimPrefix(name, s.Name.Namespace()+"::") + pad + " " + rest
		if s.Doc != "" {
			line += "  " + docColor.Sprint("# "+s.Doc)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	aliases := reg.Aliases()
	for _, from := range slices.Sorted(maps.Keys(aliases)) {
		if ns != "" && from != ns && aliases[from] != ns {
			continue
		}
		if _, err := fmt.Fprintf(w, "alias %s -> %s\n", nsColor.Sprint(from), nsColor.Sprint(aliases[from])); err != nil {
			return err
		}
	}
	return nil
}

func qualName(s *ops.Schema) string {
	if s.Overload == "" {
		return s.Name.String()
	}
	return s.Name.String() + "." + s.Overload
}

func runOpsCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	libs, err := libraryFlags(cmd, cfg)
	if err != nil {
		return err
	}
	reg, err := driver.WriteCache(cmd.Context(), args[0], libs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d operators to %s\n", reg.Len(), args[0])
	return nil
}
