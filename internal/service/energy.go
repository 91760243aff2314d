package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/dataset"
	"github.com/envtest/energy-planner/internal/estimation"
	"github.com/envtest/energy-planner/internal/estimation/calculators"
	"github.com/envtest/energy-planner/internal/events"
	"github.com/envtest/energy-planner/pkg/metrics"
	"github.com/envtest/energy-planner/pkg/requestid"
	"go.uber.org/zap"
)

// Surface names the integration a lookup came through.
type Surface string

const (
	// SurfaceFields is the generic surface: the client names the dataset file and the
	// columns to match through field* keys.
	SurfaceFields Surface = "fields"
	// SurfaceMethod is the domain surface: the dataset and criteria derive from the
	// test method and a fixed field vocabulary.
	SurfaceMethod Surface = "method"

	csvFileKey         = "csv_file"
	methodKey          = "method"
	equipmentKey       = "equipment"
	matchFieldPrefix   = "field"
	defaultScanTimeout = 5 * time.Second

	outcomeOK = "ok"
)

// Result is one successful lookup.
type Result struct {
	Dataset        string
	PowerColumn    string
	PowerKW        float64
	DurationHours  float64
	EnergyKWh      float64
	EnergyCost     float64
	FixedCosts     float64
	AdditionalCost float64
	TotalCost      float64
	CarbonKgCO2    float64
	Criteria       estimation.Criteria
	MatchPolicy    estimation.MatchPolicy
	PowerPolicy    string
	DurationPolicy string
	Breakdown      map[string]estimation.Estimation
}

// surfacePolicy binds the strategies a surface is served with. When selectAfterScan
// is set the power column is chosen once a row matched, so a request without any
// matching row reports NoMatchFound first.
type surfacePolicy struct {
	power           estimation.PowerColumnPolicy
	duration        DurationPolicy
	selectAfterScan bool
}

// lookupRequest is what a surface resolved from its body before any table is read.
type lookupRequest struct {
	dataset         string
	duration        float64
	equipmentHourly float64
	criteria        func(*dataset.Table) estimation.Criteria
	fields          []estimation.Field
}

// EnergyService resolves a request to a reference table row and derives energy, cost
// and carbon figures from its power draw. It keeps no per request state.
type EnergyService struct {
	catalog        *catalog.Catalog
	loader         dataset.TableLoader
	engine         *estimation.Engine
	scanTimeout    time.Duration
	policies       map[Surface]surfacePolicy
	equipmentRates map[string]float64
	events         EventPublisher
}

// EventPublisher receives one audit event per lookup.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.LookupEvent) error
}

type EnergyServiceOption func(*EnergyService)

// WithScanTimeout bounds table loading and matching. Non positive values are ignored.
func WithScanTimeout(d time.Duration) EnergyServiceOption {
	return func(s *EnergyService) {
		if d > 0 {
			s.scanTimeout = d
		}
	}
}

// WithEngine replaces the default calculator engine.
func WithEngine(e *estimation.Engine) EnergyServiceOption {
	return func(s *EnergyService) {
		s.engine = e
	}
}

// WithEquipmentRates sets the hourly operational rate of each equipment type a
// method lookup may name.
func WithEquipmentRates(rates map[string]float64) EnergyServiceOption {
	return func(s *EnergyService) {
		s.equipmentRates = make(map[string]float64, len(rates))
		for k, v := range rates {
			s.equipmentRates[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// WithEventPublisher emits a lookup event for every request served.
func WithEventPublisher(w EventPublisher) EnergyServiceOption {
	return func(s *EnergyService) {
		s.events = w
	}
}

// NewEngine returns an engine computing energy, the costs of tariff and carbon at emissionFactor.
func NewEngine(tariff calculators.Tariff, emissionFactor float64) *estimation.Engine {
	engine := estimation.NewEngine()
	engine.Register(calculators.NewEnergyConsumption())
	engine.Register(calculators.NewEnergyCost(
		calculators.WithCostPerKWh(tariff.CostPerKWh),
		calculators.WithCurrency(tariff.Currency),
	))
	engine.Register(calculators.NewFixedCosts(tariff))
	engine.Register(calculators.NewAdditionalCost(tariff))
	engine.Register(calculators.NewTotalCost(tariff))
	engine.Register(calculators.NewCarbonFootprint(calculators.WithEmissionFactor(emissionFactor)))
	return engine
}

func NewEnergyService(cat *catalog.Catalog, loader dataset.TableLoader, opts ...EnergyServiceOption) *EnergyService {
	s := &EnergyService{
		catalog:     cat,
		loader:      loader,
		engine:      NewEngine(calculators.DefaultTariff(), calculators.DefaultEmissionFactor),
		scanTimeout: defaultScanTimeout,
		policies: map[Surface]surfacePolicy{
			SurfaceFields: {power: estimation.FieldLastMatch{}, duration: StrictDuration{}, selectAfterScan: true},
			SurfaceMethod: {power: estimation.HeaderFirstMatch{}, duration: PermissiveDuration{}},
		},
		equipmentRates: calculators.DefaultEquipmentHourlyRates(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EnergyService) Catalog() *catalog.Catalog {
	return s.catalog
}

// LookupByFields serves the generic surface. The body names the dataset in csv_file.
// Every field* key is a criterion whose value is both the column and the expected
// cell. The power column is the last non reserved value mentioning "power".
func (s *EnergyService) LookupByFields(ctx context.Context, body *Body) (*Result, error) {
	res, err := s.lookupByFields(ctx, body)
	s.record(ctx, SurfaceFields, res, err)
	return res, err
}

func (s *EnergyService) lookupByFields(ctx context.Context, body *Body) (*Result, error) {
	policy := s.policies[SurfaceFields]

	raw, found := body.Get(csvFileKey)
	if !found {
		return nil, NewErrInvalidInput(csvFileKey, "field is required")
	}
	name, ok := raw.(string)
	if !ok || name == "" {
		return nil, NewErrInvalidInput(csvFileKey, "must be a non empty string")
	}

	duration, err := policy.duration.Duration(body)
	if err != nil {
		return nil, err
	}

	fields := body.Fields(csvFileKey, durationKey)
	criteria := estimation.Criteria{}
	for _, f := range fields {
		if !strings.HasPrefix(f.Key, matchFieldPrefix) {
			continue
		}
		criteria = append(criteria, estimation.Criterion{Column: f.Value, Value: f.Value})
	}

	return s.lookupTable(ctx, policy, lookupRequest{
		dataset:  name,
		duration: duration,
		criteria: criteria.Restrict,
		fields:   fields,
	})
}

// LookupByMethod serves the domain surface. The dataset and in-table method value are
// resolved from the method alias before any table is read.
func (s *EnergyService) LookupByMethod(ctx context.Context, body *Body) (*Result, error) {
	res, err := s.lookupByMethod(ctx, body)
	s.record(ctx, SurfaceMethod, res, err)
	return res, err
}

func (s *EnergyService) lookupByMethod(ctx context.Context, body *Body) (*Result, error) {
	policy := s.policies[SurfaceMethod]

	raw, _ := body.Get(methodKey)
	label, _ := raw.(string)
	method, err := s.catalog.ResolveMethod(label)
	if err != nil {
		return nil, err
	}

	duration, err := policy.duration.Duration(body)
	if err != nil {
		return nil, err
	}

	equipment, _ := body.Get(equipmentKey)
	name, _ := equipment.(string)

	return s.lookupTable(ctx, policy, lookupRequest{
		dataset:         method.Dataset,
		duration:        duration,
		equipmentHourly: calculators.EquipmentRate(s.equipmentRates, name),
		criteria: func(table *dataset.Table) estimation.Criteria {
			return s.catalog.Criteria(body.Map(), table.Header, method.MethodValue)
		},
	})
}

// lookupTable runs load, power column selection, match, parse and derivation. Unless
// the surface selects after the scan, the power column is chosen first so a table
// without one fails before any row is read.
func (s *EnergyService) lookupTable(ctx context.Context, policy surfacePolicy, req lookupRequest) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	name := req.dataset
	table, err := s.loader.Load(ctx, name)
	if err != nil {
		return nil, newErrLookup(err, name, nil, nil)
	}

	criteria := req.criteria(table)

	var column string
	if !policy.selectAfterScan {
		if column, err = policy.power.Select(table.Header, req.fields); err != nil {
			return nil, newErrLookup(err, name, table, criteria)
		}
	}

	row, err := estimation.Match(ctx, table, criteria)
	if err != nil {
		return nil, newErrLookup(err, name, table, criteria)
	}

	if policy.selectAfterScan {
		if column, err = policy.power.Select(table.Header, req.fields); err != nil {
			return nil, newErrLookup(err, name, table, criteria)
		}
	}

	power, err := estimation.ParsePower(row, column)
	if err != nil {
		return nil, newErrLookup(err, name, table, criteria)
	}

	breakdown, err := s.engine.Run([]estimation.Param{
		{Key: calculators.ParamPowerKW, Value: power},
		{Key: calculators.ParamDurationHours, Value: req.duration},
		{Key: calculators.ParamEquipmentHourly, Value: req.equipmentHourly},
	})
	if err != nil {
		return nil, newErrLookup(err, name, table, criteria)
	}

	return &Result{
		Dataset:        name,
		PowerColumn:    column,
		PowerKW:        power,
		DurationHours:  req.duration,
		EnergyKWh:      breakdown[calculators.EnergyConsumptionName].Value,
		EnergyCost:     breakdown[calculators.EnergyCostName].Value,
		FixedCosts:     breakdown[calculators.FixedCostsName].Value,
		AdditionalCost: breakdown[calculators.AdditionalCostName].Value,
		TotalCost:      breakdown[calculators.TotalCostName].Value,
		CarbonKgCO2:    breakdown[calculators.CarbonFootprintName].Value,
		Criteria:       criteria,
		MatchPolicy:    estimation.FirstMatch,
		PowerPolicy:    policy.power.Name(),
		DurationPolicy: policy.duration.Name(),
		Breakdown:      breakdown,
	}, nil
}

func (s *EnergyService) record(ctx context.Context, surface Surface, res *Result, err error) {
	reqID := requestid.FromContext(ctx)
	logger := zap.S().Named("energy_service").With("request_id", reqID, "surface", surface)

	ev := events.LookupEvent{RequestID: reqID, Surface: string(surface), Outcome: outcomeOK}
	if err == nil {
		metrics.IncreaseLookupsTotalMetric(string(surface), outcomeOK)
		logger.Debug("lookup succeeded")
		ev.Dataset = res.Dataset
		ev.PowerColumn = res.PowerColumn
		ev.PowerKW = res.PowerKW
		ev.DurationHours = res.DurationHours
		ev.EnergyKWh = res.EnergyKWh
	} else {
		kind := KindOf(err)
		metrics.IncreaseLookupsTotalMetric(string(surface), string(kind))
		switch kind {
		case KindDataSourceError, KindInvalidPowerValue, KindUnknown:
			logger.Errorw("lookup failed", "kind", kind, "error", err)
		default:
			logger.Infow("lookup rejected", "kind", kind, "error", err)
		}
		ev.Outcome = string(kind)
		ev.Error = err.Error()
		var lookupErr *ErrLookup
		if errors.As(err, &lookupErr) {
			ev.Dataset = lookupErr.Dataset
		}
	}

	s.emit(ctx, logger, ev)
}

func (s *EnergyService) emit(ctx context.Context, logger *zap.SugaredLogger, ev events.LookupEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logger.Errorw("failed to publish lookup event", "error", err)
	}
}
