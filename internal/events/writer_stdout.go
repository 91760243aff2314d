package events

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter logs every envelope as one structured line. Lookup payloads are
// decoded so their outcome and dataset are searchable fields.
type StdoutWriter struct {
	logger *zap.SugaredLogger
}

func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{logger: zap.S().Named("audit")}
}

func (s *StdoutWriter) Write(_ context.Context, topic string, e cloudevents.Event) error {
	fields := []any{"topic", topic, "id", e.ID(), "type", e.Type(), "time", e.Time()}

	var ev LookupEvent
	if e.Type() == LookupEventType && e.DataAs(&ev) == nil {
		fields = append(fields,
			"request_id", ev.RequestID,
			"surface", ev.Surface,
			"outcome", ev.Outcome,
			"dataset", ev.Dataset,
			"energy_kwh", ev.EnergyKWh,
		)
	} else {
		fields = append(fields, "data", string(e.Data()))
	}

	s.logger.Infow("lookup audited", fields...)
	return nil
}

func (s *StdoutWriter) Close(_ context.Context) error {
	return nil
}
