package service

import (
	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/estimation"
)

// Body is a decoded JSON request object that remembers the order its keys were declared in.
type Body struct {
	keys   []string
	values map[string]any
}

func NewBody() *Body {
	return &Body{values: map[string]any{}}
}

// Set stores value under key. A repeated key keeps its first position and takes the last value.
func (b *Body) Set(key string, value any) *Body {
	if _, found := b.values[key]; !found {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return b
}

func (b *Body) Get(key string) (any, bool) {
	v, found := b.values[key]
	return v, found
}

func (b *Body) Keys() []string {
	return append([]string(nil), b.keys...)
}

// Map returns a copy of the values. Map iteration order is unspecified.
func (b *Body) Map() map[string]any {
	m := make(map[string]any, len(b.values))
	for k, v := range b.values {
		m[k] = v
	}
	return m
}

// Fields returns every key not listed in reserved, in declaration order, with its
// value rendered as a string.
func (b *Body) Fields(reserved ...string) []estimation.Field {
	skip := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		skip[r] = struct{}{}
	}
	fields := make([]estimation.Field, 0, len(b.keys))
	for _, k := range b.keys {
		if _, found := skip[k]; found {
			continue
		}
		v, _ := catalog.Stringify(b.values[k])
		fields = append(fields, estimation.Field{Key: k, Value: v})
	}
	return fields
}
