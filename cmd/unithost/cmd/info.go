package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/units"
)

// NewInfoCommand creates the info command, the modinfo of the unit host.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [unit]",
		Short: "Show a built-in unit's descriptor and parameters",
		Long: `Show the registration descriptor and parameter definitions of a built-in
unit. Without an argument, list the built-in units.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range units.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			spec, ok := units.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %q is not a built-in unit", errUnknownUnit, args[0])
			}
			writeInfo(out, spec)
			return nil
		},
	}
}

func writeInfo(w io.Writer, spec unitmod.UnitSpec) {
	d := spec.Descriptor
	row := func(key, value string) { fmt.Fprintf(w, "%-16s%s\n", key+":", value) }
	row("name", d.Name)
	row("author", d.Author)
	row("license", d.LicenseText)
	row("description", d.Description)
	for _, p := range spec.Params {
		row("parm", fmt.Sprintf("%s:%s (%s, %s, default %s)", p.Name, p.Description, p.Type, p.Perm, p.Default))
	}
}
