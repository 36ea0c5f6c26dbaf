package node

import "github.com/goliatone/go-managed/pkg/instance"

// State is an ElementState whose properties live in child nodes.
type State struct {
	node *Node
}

var _ instance.ElementState = (*State)(nil)

// NewState returns a state backed by n.
func NewState(n *Node) *State {
	return &State{node: n}
}

// BackingNode returns the owning node.
func (s *State) BackingNode() instance.BackingNode {
	return s.node
}

// DisplayName returns the node path.
func (s *State) DisplayName() string {
	return s.node.Path()
}

// Get returns the child's instance when it is bound to a schema, or the
// child's plain value otherwise.
func (s *State) Get(name string) (any, bool) {
	child, ok := s.node.Child(name)
	if !ok {
		return nil, false
	}
	if proxy := child.Instance(); proxy != nil {
		return proxy, true
	}
	return child.Value()
}

// Set stores value on the named child node.
func (s *State) Set(name string, value any) {
	s.node.setChildValue(name, value)
}
