package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type CatalogOptions struct {
	GlobalOptions

	Output string

	out io.Writer
}

type catalogView struct {
	Methods []catalog.Method       `json:"methods"`
	Fields  []catalog.FieldMapping `json:"fields"`
}

func DefaultCatalogOptions() *CatalogOptions {
	return &CatalogOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdCatalog() *cobra.Command {
	o := DefaultCatalogOptions()
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Display the test methods and request fields known to the planner.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *CatalogOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format. One of: (json, yaml).")
}

func (o *CatalogOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *CatalogOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *CatalogOptions) Run(ctx context.Context, args []string) error {
	c, err := catalog.Load(o.cfg.Service.CatalogFile)
	if err != nil {
		return err
	}

	view := catalogView{Methods: c.Methods(), Fields: c.Fields()}
	if done, err := printStructured(o.out, view, o.Output); done {
		return err
	}

	w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "ALIAS\tLABEL\tDATASET\tMETHOD VALUE")
	for _, m := range view.Methods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Alias, m.Label, m.Dataset, m.MethodValue)
	}
	return w.Flush()
}
