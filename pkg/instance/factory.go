package instance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-managed/pkg/schema"
)

var (
	// ErrStateRequired is returned when Create receives a nil state.
	ErrStateRequired = errors.New("instance: element state is required")
	// ErrSchemaRequired is returned when Create receives a nil schema.
	ErrSchemaRequired = errors.New("instance: schema is required")
	// ErrUnimplementedMember is returned when an abstract member has no
	// registered implementation.
	ErrUnimplementedMember = errors.New("instance: abstract member has no implementation")
)

// MemberFunc implements a non-property member of a managed type.
type MemberFunc func(p *Proxy, args ...any) (any, error)

// FactoryOption configures a ProxyFactory.
type FactoryOption func(*ProxyFactory)

// WithImplementation registers fn as the implementation of member on the
// named type.
func WithImplementation(typeName, member string, fn MemberFunc) FactoryOption {
	return func(f *ProxyFactory) {
		f.register(typeName, member, fn)
	}
}

// ProxyFactory synthesises Proxy values for struct schemas.
type ProxyFactory struct {
	mu    sync.RWMutex
	impls map[string]map[string]MemberFunc
}

// NewProxyFactory constructs a factory with the supplied options.
func NewProxyFactory(options ...FactoryOption) *ProxyFactory {
	f := &ProxyFactory{impls: make(map[string]map[string]MemberFunc)}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Implement registers a member implementation after construction.
func (f *ProxyFactory) Implement(typeName, member string, fn MemberFunc) {
	f.register(typeName, member, fn)
}

func (f *ProxyFactory) register(typeName, member string, fn MemberFunc) {
	typeName = strings.TrimSpace(typeName)
	member = strings.TrimSpace(member)
	if typeName == "" || member == "" || fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.impls[typeName] == nil {
		f.impls[typeName] = make(map[string]MemberFunc)
	}
	f.impls[typeName][member] = fn
}

// Create builds a proxy whose property accessors delegate to state. Failures
// are reported as *schema.InstantiationError.
func (f *ProxyFactory) Create(state ElementState, s *schema.StructSchema) (*Proxy, error) {
	if s == nil {
		return nil, &schema.InstantiationError{Err: ErrSchemaRequired}
	}
	typeName := s.Type().Name
	if state == nil {
		return nil, &schema.InstantiationError{Type: typeName, Err: ErrStateRequired}
	}

	f.mu.RLock()
	impls := f.impls[typeName]
	members := make(map[string]MemberFunc, len(impls))
	for name, fn := range impls {
		members[name] = fn
	}
	f.mu.RUnlock()

	var missing []string
	for _, member := range s.UnimplementedMembers() {
		if _, ok := members[member.Name]; !ok {
			missing = append(missing, member.Owner+"."+member.Name+"()")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &schema.InstantiationError{
			Type: typeName,
			Err:  fmt.Errorf("%w: %s", ErrUnimplementedMember, strings.Join(missing, ", ")),
		}
	}

	p := &Proxy{
		schema:   s,
		state:    state,
		bindings: make(map[string]binding, len(s.Properties())),
		members:  members,
	}
	for _, property := range s.Properties() {
		p.bindings[property.Name] = newBinding(state, property)
	}
	return p, nil
}
