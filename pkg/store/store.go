package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-managed/pkg/extract"
	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/node"
	"github.com/goliatone/go-managed/pkg/schema"
)

var (
	// ErrNoTypeSource is returned when the store was built without a type
	// source.
	ErrNoTypeSource = errors.New("store: type source is required")
	// ErrNotInstantiable is returned when the strategy of a type provides no
	// node initializer.
	ErrNotInstantiable = errors.New("store: type cannot be instantiated")
)

type entry struct {
	extraction *extract.Extraction
	err        error
	// checked is set once the property types reachable from the schema
	// were validated; nestedErr holds the outcome.
	checked   bool
	nestedErr error
}

// Store caches extracted schemas by type name. It implements schema.Lookup.
type Store struct {
	source         schema.TypeSource
	hierarchy      schema.Hierarchy
	factory        *instance.ProxyFactory
	logger         *slog.Logger
	concurrency    int
	extractOptions []extract.Option
	extractor      *extract.Extractor

	flights singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry
}

var _ schema.Lookup = (*Store)(nil)

// New constructs a Store.
func New(options ...Option) *Store {
	s := &Store{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: runtime.GOMAXPROCS(0),
		entries:     make(map[string]entry),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.factory == nil {
		s.factory = instance.NewProxyFactory()
	}
	if s.hierarchy == nil {
		if h, ok := s.source.(schema.Hierarchy); ok {
			s.hierarchy = h
		}
	}

	extractOptions := []extract.Option{
		extract.WithProxyFactory(s.factory),
		extract.WithLogger(s.logger),
	}
	s.extractor = extract.New(append(extractOptions, s.extractOptions...)...)
	return s
}

// Factory returns the proxy factory shared by every schema of the store.
func (s *Store) Factory() *instance.ProxyFactory {
	return s.factory
}

// Schema returns the extracted schema of name, extracting it on first use.
func (s *Store) Schema(ctx context.Context, name string) (*schema.StructSchema, error) {
	extraction, err := s.Extraction(ctx, name)
	if err != nil {
		return nil, err
	}
	return extraction.Schema, nil
}

// Extraction returns the full extraction result of name. The model types
// reachable through its properties are extracted too, and a failure in any
// of them fails name.
func (s *Store) Extraction(ctx context.Context, name string) (*extract.Extraction, error) {
	e, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if e.err != nil {
		return nil, e.err
	}
	if !e.checked {
		nestedErr := extract.ValidateNested(ctx, e.extraction.Schema, s.resolveNested)
		if isContextErr(nestedErr) {
			return nil, nestedErr
		}
		e.checked, e.nestedErr = true, nestedErr
		s.mu.Lock()
		s.entries[name] = e
		s.mu.Unlock()
	}
	if e.nestedErr != nil {
		return nil, e.nestedErr
	}
	return e.extraction, nil
}

// load returns the cached extraction of name alone, extracting it once.
// Concurrent callers share the extraction, which is detached from their
// contexts; each caller stops waiting when its own context is done.
func (s *Store) load(ctx context.Context, name string) (entry, error) {
	if e, ok := s.cached(name); ok {
		return e, nil
	}
	if s.source == nil {
		return entry{}, ErrNoTypeSource
	}
	if err := ctx.Err(); err != nil {
		return entry{}, err
	}

	detached := context.WithoutCancel(ctx)
	results := s.flights.DoChan(name, func() (any, error) {
		if e, ok := s.cached(name); ok {
			return e, nil
		}
		extraction, err := s.extract(detached, name)
		e := entry{extraction: extraction, err: err}
		if isContextErr(err) {
			return e, nil
		}
		s.mu.Lock()
		s.entries[name] = e
		s.mu.Unlock()
		return e, nil
	})

	select {
	case <-ctx.Done():
		return entry{}, ctx.Err()
	case result := <-results:
		if result.Shared {
			s.logger.Debug("shared schema extraction", "type", name)
		}
		return result.Val.(entry), nil
	}
}

// resolveNested serves extract.ValidateNested. Types unknown to the source
// are treated as values rather than models.
func (s *Store) resolveNested(ctx context.Context, name string) (*schema.StructSchema, bool, error) {
	catalog, hasCatalog := s.source.(schema.Catalog)
	if hasCatalog && !catalog.Has(name) {
		return nil, false, nil
	}
	e, err := s.load(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if e.err != nil {
		if !hasCatalog && errors.Is(e.err, schema.ErrUnknownType) {
			return nil, false, nil
		}
		return nil, false, e.err
	}
	return e.extraction.Schema, true, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Store) extract(ctx context.Context, name string) (*extract.Extraction, error) {
	desc, err := s.source.Describe(ctx, name)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownType) {
			return nil, err
		}
		return nil, fmt.Errorf("store: describe %s: %w", name, err)
	}

	extraction, err := s.extractor.Extract(ctx, desc, s.hierarchy, s)
	if err != nil {
		s.logger.Warn("schema extraction failed", "type", name, "error", err)
		return nil, err
	}
	return extraction, nil
}

func (s *Store) cached(name string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// ExtractAll extracts names concurrently and returns the schemas in input
// order. The first failure cancels the remaining extractions.
func (s *Store) ExtractAll(ctx context.Context, names ...string) ([]*schema.StructSchema, error) {
	out := make([]*schema.StructSchema, len(names))
	sem := semaphore.NewWeighted(int64(s.concurrency))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		if err := sem.Acquire(groupCtx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			structSchema, err := s.Schema(groupCtx, name)
			if err != nil {
				return err
			}
			out[i] = structSchema
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Names returns the types extracted so far, including failed ones, in sorted
// order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initializer returns the node initializer of name.
func (s *Store) Initializer(ctx context.Context, name string) (node.Initializer, error) {
	extraction, err := s.Extraction(ctx, name)
	if err != nil {
		return nil, err
	}
	if extraction.Initializer == nil {
		return nil, fmt.Errorf("%w: %s (%s strategy)", ErrNotInstantiable, name, extraction.Strategy)
	}
	return extraction.Initializer, nil
}

// Instantiate adds a child named childName to parent, initialised as an
// instance of typeName, and returns it.
func (s *Store) Instantiate(ctx context.Context, parent *node.Node, childName, typeName string) (*node.Node, error) {
	if parent == nil {
		return nil, errors.New("store: parent node is required")
	}
	init, err := s.Initializer(ctx, typeName)
	if err != nil {
		return nil, err
	}
	return parent.AddChild(ctx, childName, init)
}
