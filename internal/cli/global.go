package cli

import (
	"github.com/envtest/energy-planner/internal/config"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// GlobalOptions override the environment configuration for offline commands.
type GlobalOptions struct {
	DataDir     string
	CatalogFile string

	cfg *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.DataDir, "data-dir", "d", o.DataDir, "Directory holding the reference tables (overrides ENERGY_PLANNER_DATA_DIR)")
	fs.StringVar(&o.CatalogFile, "catalog", o.CatalogFile, "Method catalog file (overrides ENERGY_PLANNER_CATALOG_FILE)")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.DataDir != "" {
		cfg.Dataset.Source = config.SourceFile
		cfg.Dataset.DataDir = o.DataDir
	}
	if o.CatalogFile != "" {
		cfg.Service.CatalogFile = o.CatalogFile
	}
	o.cfg = cfg
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return o.cfg.Validate()
}

func (o *GlobalOptions) EnergyService() (*service.EnergyService, error) {
	srv, _, err := service.NewEnergyServiceFromConfig(o.cfg)
	return srv, err
}
