package services

import (
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
)

type observers struct {
	log     logging.Logger
	metrics *metrics.Metrics
}

// Option configures the logger and metrics of a service.
type Option func(*observers)

func WithLogger(l logging.Logger) Option {
	return func(o *observers) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *observers) { o.metrics = m }
}

func newObservers(component string, opts []Option) observers {
	o := observers{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With("component", component)
	return o
}
