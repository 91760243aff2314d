package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SourceFile = "file"
	SourceS3   = "s3"
)

var singleConfig *Config = nil

type Config struct {
	Service *svcConfig
	Dataset *datasetConfig
	Pricing *pricingConfig
}

type svcConfig struct {
	Address         string   `envconfig:"ENERGY_PLANNER_ADDRESS" default:":3443"`
	MetricsAddress  string   `envconfig:"ENERGY_PLANNER_METRICS_ADDRESS" default:":8080"`
	LogLevel        string   `envconfig:"ENERGY_PLANNER_LOG_LEVEL" default:"info"`
	LogFormat       string   `envconfig:"ENERGY_PLANNER_LOG_FORMAT" default:"console"`
	MaxRequestBytes int64    `envconfig:"ENERGY_PLANNER_MAX_REQUEST_BYTES" default:"1048576"`
	CorsOrigins     []string `envconfig:"ENERGY_PLANNER_CORS_ORIGINS" default:"*"`
	CatalogFile     string   `envconfig:"ENERGY_PLANNER_CATALOG_FILE" default:""`
	AuditEvents     bool     `envconfig:"ENERGY_PLANNER_AUDIT_EVENTS" default:"false"`
	AuditTopic      string   `envconfig:"ENERGY_PLANNER_AUDIT_TOPIC" default:"energy-planner.events"`
}

type datasetConfig struct {
	// Source is either "file" (DataDir) or "s3" (S3 block).
	Source      string        `envconfig:"ENERGY_PLANNER_SOURCE" default:"file"`
	DataDir     string        `envconfig:"ENERGY_PLANNER_DATA_DIR" default:"data"`
	ScanTimeout time.Duration `envconfig:"ENERGY_PLANNER_SCAN_TIMEOUT" default:"5s"`
	// CacheTTL of zero disables the table cache.
	CacheTTL time.Duration `envconfig:"ENERGY_PLANNER_TABLE_CACHE_TTL" default:"0s"`
	S3       S3
}

type S3 struct {
	Endpoint  string `envconfig:"ENERGY_PLANNER_S3_ENDPOINT" default:""`
	Bucket    string `envconfig:"ENERGY_PLANNER_S3_BUCKET" default:""`
	Prefix    string `envconfig:"ENERGY_PLANNER_S3_PREFIX" default:""`
	AccessKey string `envconfig:"ENERGY_PLANNER_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"ENERGY_PLANNER_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"ENERGY_PLANNER_S3_USE_SSL" default:"false"`
}

type pricingConfig struct {
	CostPerKWh           float64            `envconfig:"ENERGY_PLANNER_COST_PER_KWH" default:"0.135"`
	EmissionFactorPerKWh float64            `envconfig:"ENERGY_PLANNER_EMISSION_FACTOR" default:"0.58"`
	Currency             string             `envconfig:"ENERGY_PLANNER_CURRENCY" default:"EUR"`
	RHCost               float64            `envconfig:"ENERGY_PLANNER_RH_COST" default:"210"`
	TransportCost        float64            `envconfig:"ENERGY_PLANNER_TRANSPORT_COST" default:"150"`
	// AgeFactor multiplies the variable costs, 1 means no surcharge.
	AgeFactor            float64            `envconfig:"ENERGY_PLANNER_AGE_FACTOR" default:"1"`
	EquipmentHourlyRates map[string]float64 `envconfig:"ENERGY_PLANNER_EQUIPMENT_HOURLY_RATES" default:"thermal_chamber:5,thermal_shock_chamber:7.5,vibrating_pot:100,combined_vibration_thermal:105"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// Load reads the environment into a fresh Config without touching the singleton.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceFile:
		if c.Dataset.DataDir == "" {
			return fmt.Errorf("data directory is required for the %q source", SourceFile)
		}
	case SourceS3:
		if c.Dataset.S3.Endpoint == "" || c.Dataset.S3.Bucket == "" {
			return fmt.Errorf("s3 endpoint and bucket are required for the %q source", SourceS3)
		}
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	if c.Dataset.ScanTimeout <= 0 {
		return fmt.Errorf("scan timeout must be positive, got %s", c.Dataset.ScanTimeout)
	}
	if c.Dataset.CacheTTL < 0 {
		return fmt.Errorf("table cache ttl must not be negative, got %s", c.Dataset.CacheTTL)
	}
	if c.Pricing.CostPerKWh < 0 || c.Pricing.EmissionFactorPerKWh < 0 {
		return fmt.Errorf("cost and emission rates must not be negative")
	}
	if c.Pricing.RHCost < 0 || c.Pricing.TransportCost < 0 {
		return fmt.Errorf("fixed costs must not be negative")
	}
	if c.Pricing.AgeFactor < 1 {
		return fmt.Errorf("age factor must be at least 1, got %g", c.Pricing.AgeFactor)
	}
	for equipment, rate := range c.Pricing.EquipmentHourlyRates {
		if rate < 0 {
			return fmt.Errorf("hourly rate of %q must not be negative", equipment)
		}
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("address=%s metrics=%s source=%s data_dir=%s scan_timeout=%s cache_ttl=%s cost_per_kwh=%g",
		c.Service.Address, c.Service.MetricsAddress, c.Dataset.Source, c.Dataset.DataDir,
		c.Dataset.ScanTimeout, c.Dataset.CacheTTL, c.Pricing.CostPerKWh)
}
