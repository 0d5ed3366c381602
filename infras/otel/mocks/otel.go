package mocks

import "resort/infras/otel"

// NewOtel returns a tracer that drops every span.
func NewOtel() otel.Otel {
	return otel.Noop()
}
