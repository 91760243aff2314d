package service

import (
	"fmt"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/config"
	"github.com/envtest/energy-planner/internal/dataset"
	"github.com/envtest/energy-planner/internal/estimation/calculators"
)

// NewSource builds the dataset source selected by the configuration.
func NewSource(cfg *config.Config) (dataset.Source, error) {
	switch cfg.Dataset.Source {
	case config.SourceFile:
		return dataset.NewFileSource(cfg.Dataset.DataDir), nil
	case config.SourceS3:
		s3 := cfg.Dataset.S3
		return dataset.NewMinioSource(
			dataset.WithEndpoint(s3.Endpoint),
			dataset.WithBucket(s3.Bucket),
			dataset.WithPrefix(s3.Prefix),
			dataset.WithAccessKey(s3.AccessKey),
			dataset.WithSecretKey(s3.SecretKey),
			dataset.WithSSL(s3.UseSSL),
		)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// TariffFromConfig returns the cost model of the pricing section.
func TariffFromConfig(cfg *config.Config) calculators.Tariff {
	return calculators.Tariff{
		CostPerKWh: cfg.Pricing.CostPerKWh,
		RH:         cfg.Pricing.RHCost,
		Transport:  cfg.Pricing.TransportCost,
		AgeFactor:  cfg.Pricing.AgeFactor,
		Currency:   cfg.Pricing.Currency,
	}
}

// NewEnergyServiceFromConfig assembles the service described by cfg. The returned
// cache is nil unless a table cache TTL is configured; the caller runs its sweeper.
// opts are applied after the configured ones.
func NewEnergyServiceFromConfig(cfg *config.Config, opts ...EnergyServiceOption) (*EnergyService, *dataset.CachedLoader, error) {
	cat, err := catalog.Load(cfg.Service.CatalogFile)
	if err != nil {
		return nil, nil, err
	}

	source, err := NewSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		loader dataset.TableLoader = dataset.NewLoader(source)
		cache  *dataset.CachedLoader
	)
	if cfg.Dataset.CacheTTL > 0 {
		cache = dataset.NewCachedLoader(loader, cfg.Dataset.CacheTTL)
		loader = cache
	}

	srvOpts := append([]EnergyServiceOption{
		WithScanTimeout(cfg.Dataset.ScanTimeout),
		WithEngine(NewEngine(TariffFromConfig(cfg), cfg.Pricing.EmissionFactorPerKWh)),
		WithEquipmentRates(cfg.Pricing.EquipmentHourlyRates),
	}, opts...)
	srv := NewEnergyService(cat, loader, srvOpts...)
	return srv, cache, nil
}
