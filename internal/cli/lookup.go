package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/envtest/energy-planner/internal/handlers/v1alpha1/mappers"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type LookupOptions struct {
	GlobalOptions

	Method   string
	CsvFile  string
	Fields   []string
	Duration string
	Output   string

	out io.Writer
}

func DefaultLookupOptions() *LookupOptions {
	return &LookupOptions{
		GlobalOptions: DefaultGlobalOptions(),
		out:           os.Stdout,
	}
}

func NewCmdLookup() *cobra.Command {
	o := DefaultLookupOptions()
	cmd := &cobra.Command{
		Use:   "lookup (--method METHOD | --csv-file FILE) [--field key=value]...",
		Short: "Compute the energy of one test condition against the reference tables.",
		Example: `  energy-planner lookup --method "2-1: A" --field initialTemp=-40 --duration 2
  energy-planner lookup --csv-file chambers.csv --field field1=C2 --field column="Power (kW)" -o json`,
		Args: cobra.NoArgs,
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

func (o *LookupOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Method, "method", "m", o.Method, "Test method, resolved through the catalog")
	fs.StringVar(&o.CsvFile, "csv-file", o.CsvFile, "Reference table to match field* keys against")
	fs.StringArrayVarP(&o.Fields, "field", "f", o.Fields, "Request field as key=value, repeatable and kept in order")
	fs.StringVar(&o.Duration, "duration", o.Duration, "Test duration in hours")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format. One of: (json, yaml).")
}

func (o *LookupOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *LookupOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if (o.Method == "") == (o.CsvFile == "") {
		return fmt.Errorf("exactly one of --method or --csv-file is required")
	}
	for _, f := range o.Fields {
		if _, _, err := parseField(f); err != nil {
			return err
		}
	}
	return validateOutput(o.Output)
}

// Body builds the request body the HTTP surfaces would have received.
func (o *LookupOptions) Body() *service.Body {
	body := service.NewBody()
	if o.Method != "" {
		body.Set("method", o.Method)
	} else {
		body.Set("csv_file", o.CsvFile)
	}
	for _, f := range o.Fields {
		key, value, _ := parseField(f)
		body.Set(key, value)
	}
	if o.Duration != "" {
		body.Set("duration", o.Duration)
	}
	return body
}

func (o *LookupOptions) Run(ctx context.Context, args []string) error {
	srv, err := o.EnergyService()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var res *service.Result
	if o.Method != "" {
		res, err = srv.LookupByMethod(ctx, o.Body())
	} else {
		res, err = srv.LookupByFields(ctx, o.Body())
	}
	if err != nil {
		return fmt.Errorf("%s: %w", service.KindOf(err), err)
	}

	var out any = mappers.TestEnergyResponseFromResult(res)
	if o.Method == "" {
		out = mappers.EnergyResponseFromResult(res)
	}
	if done, err := printStructured(o.out, out, o.Output); done {
		return err
	}

	w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "DATASET\tPOWER COLUMN\tPOWER\tHOURS\tENERGY (kWh)\tCOST\tTOTAL COST\tCO2 (kg)")
	fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%g\n",
		res.Dataset, res.PowerColumn, res.PowerKW, res.DurationHours, res.EnergyKWh, res.EnergyCost, res.TotalCost, res.CarbonKgCO2)
	return w.Flush()
}
