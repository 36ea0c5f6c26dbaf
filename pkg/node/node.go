package node

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/schema"
)

var (
	// ErrNameRequired is returned when adding a child without a name.
	ErrNameRequired = errors.New("node: child name is required")
	// ErrDuplicateChild is returned when a child name is already taken.
	ErrDuplicateChild = errors.New("node: child already exists")
)

// Node is an element of the mutable model tree. A node may hold a plain
// value, or a synthesised instance bound to a schema.
type Node struct {
	mu       sync.RWMutex
	name     string
	parent   *Node
	children []*Node
	index    map[string]*Node
	value    any
	hasValue bool
	schema   *schema.StructSchema
	proxy    *instance.Proxy
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{index: make(map[string]*Node)}
}

// Name returns the node's name within its parent.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the dotted path from the root.
func (n *Node) Path() string {
	var segments []string
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		segments = append(segments, cur.name)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

// Child returns the named child.
func (n *Node) Child(name string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	child, ok := n.index[name]
	return child, ok
}

// Children returns children in creation order.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Value returns the plain value stored on the node.
func (n *Node) Value() (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value, n.hasValue
}

// Instance returns the synthesised instance bound to the node, if any.
func (n *Node) Instance() *instance.Proxy {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.proxy
}

// Schema returns the schema bound to the node, if any.
func (n *Node) Schema() *schema.StructSchema {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.schema
}

// AddChild creates a child node, runs init against it, and links it into the
// tree only when init succeeds. Callers never observe a child whose
// initialisation is incomplete.
func (n *Node) AddChild(ctx context.Context, name string, init Initializer) (*Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, exists := n.Child(name); exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChild, n.childPath(name))
	}

	child := &Node{name: name, parent: n, index: make(map[string]*Node)}
	if init != nil {
		if err := init.Initialize(ctx, child); err != nil {
			return nil, fmt.Errorf("node: initialise %s: %w", child.Path(), err)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.index[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChild, n.childPath(name))
	}
	n.children = append(n.children, child)
	n.index[name] = child
	return child, nil
}

func (n *Node) childPath(name string) string {
	if path := n.Path(); path != "" {
		return path + "." + name
	}
	return name
}

func (n *Node) setValue(value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = value
	n.hasValue = true
}

// setChildValue stores value on the named child, creating a plain child when
// needed.
func (n *Node) setChildValue(name string, value any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	child, ok := n.index[name]
	if !ok {
		child = &Node{name: name, parent: n, index: make(map[string]*Node)}
		n.children = append(n.children, child)
		n.index[name] = child
	}
	child.setValue(value)
}

func (n *Node) bind(s *schema.StructSchema, proxy *instance.Proxy) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.schema = s
	n.proxy = proxy
}
