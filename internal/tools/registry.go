// ABOUTME: Immutable registry of callable tools and their descriptors
// ABOUTME: Listed tools appear in tools/list; aliases are callable but unlisted

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrToolNotFound indicates no registered tool has the requested name.
var ErrToolNotFound = errors.New("tool not found")

// ErrDuplicateTool indicates two tools were registered under the same name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrInvalidTool indicates a tool is missing its name or handler.
var ErrInvalidTool = errors.New("invalid tool")

// Descriptor is the public description of a tool as returned by tools/list.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// Handler executes a tool. args is the raw arguments object from the call,
// nil when the caller supplied none. A returned error is an unexpected fault;
// application failures are reported with an error Result instead.
type Handler func(ctx context.Context, args json.RawMessage) (*Result, error)

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor
	Handler Handler
}

// Registry is a fixed set of tools built once at startup.
type Registry struct {
	listed []Descriptor
	byName map[string]*Tool
}

// NewRegistry builds a registry. listed tools are returned by List in the
// given order; aliases can be called by name but are not listed.
// Returns ErrDuplicateTool if any two tools share a name.
func NewRegistry(listed []*Tool, aliases ...*Tool) (*Registry, error) {
	r := &Registry{
		listed: make([]Descriptor, 0, len(listed)),
		byName: make(map[string]*Tool, len(listed)+len(aliases)),
	}

	add := func(t *Tool) error {
		if t == nil || t.Name == "" || t.Handler == nil {
			return ErrInvalidTool
		}
		if _, exists := r.byName[t.Name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		r.byName[t.Name] = t
		return nil
	}

	for _, t := range listed {
		if err := add(t); err != nil {
			return nil, err
		}
		r.listed = append(r.listed, t.Descriptor)
	}
	for _, t := range aliases {
		if err := add(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// List returns the listed tool descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.listed))
	copy(out, r.listed)
	return out
}

// Get returns the tool registered under name, listed or alias.
func (r *Registry) Get(name string) (*Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}
