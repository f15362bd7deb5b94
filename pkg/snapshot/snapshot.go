// Package snapshot captures a serializable view of an element tree for
// debugging and golden tests. Snapshots encode to YAML for people and to
// deterministic CBOR for tools.
package snapshot

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/go-guihck/guihck/pkg/core"
)

// Property kinds as they appear in a snapshot.
const (
	KindLiteral = "literal"
	KindBinding = "binding"
	KindAlias   = "alias"
	KindMethod  = "method"
)

// Tree is a captured element tree.
type Tree struct {
	Session string   `yaml:"session,omitempty" cbor:"session,omitempty"`
	Types   []string `yaml:"types,flow" cbor:"types"`
	Root    *Node    `yaml:"root" cbor:"root"`
}

// Node is one element.
type Node struct {
	ID       uint64     `yaml:"id" cbor:"id"`
	Type     string     `yaml:"type,omitempty" cbor:"type,omitempty"`
	Props    []Property `yaml:"props,omitempty" cbor:"props,omitempty"`
	Children []*Node    `yaml:"children,omitempty" cbor:"children,omitempty"`
}

// Property is one stored property with its resolved value. Value is
// omitted for methods and for properties that resolve to nothing.
type Property struct {
	Name   string   `yaml:"name" cbor:"name"`
	Kind   string   `yaml:"kind" cbor:"kind"`
	Value  any      `yaml:"value,omitempty" cbor:"value,omitempty"`
	Target string   `yaml:"target,omitempty" cbor:"target,omitempty"`
	Deps   []string `yaml:"deps,omitempty,flow" cbor:"deps,omitempty"`
	Error  string   `yaml:"error,omitempty" cbor:"error,omitempty"`
}

// Options controls capture.
type Options struct {
	// Session records the context's session id. Leave it off for golden
	// files, where it would differ on every run.
	Session bool
	// Values resolves bindings and aliases. When false only the stored
	// shape is captured.
	Values bool
}

// DefaultOptions resolves values and omits the session id.
var DefaultOptions = Options{Values: true}

// Capture walks ctx from the root and records every element.
func Capture(ctx *core.Context, opts Options) *Tree {
	t := &Tree{Types: ctx.Types()}
	if opts.Session {
		t.Session = ctx.SessionID().String()
	}
	t.Root = captureNode(ctx, ctx.Root(), opts)
	return t
}

func captureNode(ctx *core.Context, id core.ElementID, opts Options) *Node {
	n := &Node{ID: uint64(id)}
	if typ, ok := ctx.Type(id); ok {
		n.Type = ctx.TypeName(typ)
	}
	for _, name := range ctx.PropertyNames(id) {
		n.Props = append(n.Props, captureProperty(ctx, id, name, opts))
	}
	for _, child := range ctx.Children(id) {
		n.Children = append(n.Children, captureNode(ctx, child, opts))
	}
	return n
}

func captureProperty(ctx *core.Context, id core.ElementID, name string, opts Options) Property {
	p := Property{Name: name}
	raw, _ := ctx.Raw(id, name)
	switch v := raw.(type) {
	case core.Literal:
		p.Kind = KindLiteral
		p.Value = plain(v.V)
		return p
	case core.Method:
		p.Kind = KindMethod
		return p
	case core.Binding:
		p.Kind = KindBinding
		for _, d := range v.Deps {
			p.Deps = append(p.Deps, d.String())
		}
	case core.Alias:
		p.Kind = KindAlias
		p.Target = v.Target.String()
	}
	if !opts.Values {
		return p
	}
	val, err := ctx.Property(id, name)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Value = plain(val)
	return p
}

// plain converts resolved values into types every encoder handles.
func plain(v any) any {
	switch x := v.(type) {
	case core.UnsetValue:
		return nil
	case core.Method:
		return nil
	case core.ElementID:
		return uint64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case int64, float64, string, bool, nil:
		return x
	}
	return fmt.Sprint(v)
}

// Find returns the node with the given id, or nil.
func (t *Tree) Find(id uint64) *Node {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n == nil || n.ID == id {
			return n
		}
		for _, c := range n.Children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.Root)
}

// Prop returns the named property of n.
func (n *Node) Prop(name string) (Property, bool) {
	for _, p := range n.Props {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// YAML renders t with two-space indentation.
func (t *Tree) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("snapshot: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseYAML decodes a tree rendered by YAML.
func ParseYAML(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("snapshot: decode yaml: %w", err)
	}
	return &t, nil
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// CBOR encodes t canonically, so equal trees produce equal bytes.
func (t *Tree) CBOR() ([]byte, error) {
	return cborEncMode.Marshal(t)
}

// ParseCBOR decodes a tree encoded by CBOR.
func ParseCBOR(data []byte) (*Tree, error) {
	var t Tree
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("snapshot: decode cbor: %w", err)
	}
	return &t, nil
}
