package store

import (
	"log/slog"

	"github.com/goliatone/go-managed/pkg/extract"
	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/schema"
)

// Option configures a Store.
type Option func(*Store)

// WithTypeSource sets the source of type descriptions. When the source also
// implements schema.Hierarchy it answers hierarchy questions too.
func WithTypeSource(source schema.TypeSource) Option {
	return func(s *Store) {
		s.source = source
	}
}

// WithHierarchy overrides the hierarchy used for accessor resolution.
func WithHierarchy(h schema.Hierarchy) Option {
	return func(s *Store) {
		s.hierarchy = h
	}
}

// WithLogger injects a structured logger shared with the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrategies replaces the schema strategies.
func WithStrategies(strategies ...extract.Strategy) Option {
	return func(s *Store) {
		s.extractOptions = append(s.extractOptions, extract.WithStrategies(strategies...))
	}
}

// WithAspectStrategies replaces the aspect strategies.
func WithAspectStrategies(strategies ...extract.AspectStrategy) Option {
	return func(s *Store) {
		s.extractOptions = append(s.extractOptions, extract.WithAspectStrategies(strategies...))
	}
}

// WithProxyFactory sets the factory used to probe and create instances.
func WithProxyFactory(factory *instance.ProxyFactory) Option {
	return func(s *Store) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithConcurrency bounds the number of extractions ExtractAll runs at once.
// Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}
