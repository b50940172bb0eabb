// Package state implements the session state wire protocol: serializing a
// session's layout tree into a compact URL-safe string, decoding it back,
// and migrating values captured under older protocol versions into the
// current shape.
package state

import (
	"encoding/json"
	"fmt"
)

// Layout node types.
const (
	NodeRow       = "row"
	NodeColumn    = "column"
	NodeComponent = "component"
)

// Component kinds carried by leaf nodes.
const (
	ComponentEditor   = "codeEditor"
	ComponentCompiler = "compiler"
)

// SessionState is the canonical, current-version description of an
// editing/compilation session: a versioned tree of layout nodes.
type SessionState struct {
	Version int           `json:"version"`
	Content []*LayoutNode `json:"content"`
}

// LayoutNode is a node in the layout tree: either a directional container
// (row/column) holding an ordered sequence of children, or a component
// leaf carrying a component-kind tag plus component-specific fields.
type LayoutNode struct {
	Type    string        `json:"type"`
	Content []*LayoutNode `json:"content,omitempty"`

	// For component leaves
	ComponentName  string         `json:"componentName,omitempty"`
	ComponentState map[string]any `json:"componentState,omitempty"`
}

// EditorState is the typed view of a codeEditor leaf's component state.
type EditorState struct {
	ID       int           `json:"id,omitempty"`
	Source   string        `json:"source"`
	Language string        `json:"lang,omitempty"`
	Options  EditorOptions `json:"options"`
}

// EditorOptions holds per-editor behaviour flags.
type EditorOptions struct {
	CompileOnChange bool `json:"compileOnChange"`
	ColouriseAsm    bool `json:"colouriseAsm"`
}

// CompilerState is the typed view of a compiler leaf's component state:
// the selected compiler id, its raw command-line options, and the output
// filter flags.
type CompilerState struct {
	Compiler string          `json:"compiler"`
	Options  string          `json:"options"`
	Source   int             `json:"source,omitempty"`
	Filters  map[string]bool `json:"filters,omitempty"`
}

// Validate checks the node against the layout rules: containers hold
// children and nothing else, component leaves hold a known component kind
// and no children.
func (n *LayoutNode) Validate() error {
	switch n.Type {
	case NodeRow, NodeColumn:
		if n.ComponentName != "" || n.ComponentState != nil {
			return fmt.Errorf("%s node must not carry component fields", n.Type)
		}
		if len(n.Content) == 0 {
			return fmt.Errorf("%s node must have children", n.Type)
		}
		for i, child := range n.Content {
			if child == nil {
				return fmt.Errorf("%s child %d is nil", n.Type, i)
			}
			if err := child.Validate(); err != nil {
				return fmt.Errorf("%s child %d: %w", n.Type, i, err)
			}
		}
		return nil
	case NodeComponent:
		if len(n.Content) > 0 {
			return fmt.Errorf("component node must not have children")
		}
		if n.ComponentName != ComponentEditor && n.ComponentName != ComponentCompiler {
			return fmt.Errorf("unknown component kind %q", n.ComponentName)
		}
		return nil
	default:
		return fmt.Errorf("invalid node type %q", n.Type)
	}
}

// Validate checks the whole session state tree.
func (s *SessionState) Validate() error {
	if s.Content == nil {
		return fmt.Errorf("content must not be absent")
	}
	for i, node := range s.Content {
		if node == nil {
			return fmt.Errorf("content %d is nil", i)
		}
		if err := node.Validate(); err != nil {
			return fmt.Errorf("content %d: %w", i, err)
		}
	}
	return nil
}

// EditorState decodes the component state of a codeEditor leaf into its
// typed view.
func (n *LayoutNode) EditorState() (*EditorState, error) {
	if n.ComponentName != ComponentEditor {
		return nil, fmt.Errorf("node is %q, not an editor", n.ComponentName)
	}
	var es EditorState
	if err := convert(n.ComponentState, &es); err != nil {
		return nil, err
	}
	return &es, nil
}

// CompilerState decodes the component state of a compiler leaf into its
// typed view.
func (n *LayoutNode) CompilerState() (*CompilerState, error) {
	if n.ComponentName != ComponentCompiler {
		return nil, fmt.Errorf("node is %q, not a compiler", n.ComponentName)
	}
	var cs CompilerState
	if err := convert(n.ComponentState, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

// Compilers returns the typed compiler states of every compiler leaf in
// the tree, in document order.
func (s *SessionState) Compilers() []*CompilerState {
	var out []*CompilerState
	for _, node := range s.Content {
		out = append(out, node.compilers()...)
	}
	return out
}

func (n *LayoutNode) compilers() []*CompilerState {
	if n == nil {
		return nil
	}
	if n.Type == NodeComponent {
		if cs, err := n.CompilerState(); err == nil {
			return []*CompilerState{cs}
		}
		return nil
	}
	var out []*CompilerState
	for _, child := range n.Content {
		out = append(out, child.compilers()...)
	}
	return out
}

// convert copies between identical structures through their JSON form.
func convert(from, to any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}

// toValue converts the typed state into the generic map form used by the
// wire codecs.
func (s *SessionState) toValue() (map[string]any, error) {
	var m map[string]any
	if err := convert(s, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromValue converts a fully-migrated generic value into the typed state
// and validates it.
func fromValue(m map[string]any) (*SessionState, error) {
	var s SessionState
	if err := convert(m, &s); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := s.Validate(); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &s, nil
}
