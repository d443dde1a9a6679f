package mdx

import (
	"fmt"
	"sort"
	"strings"

	xhtml "golang.org/x/net/html"
)

// NodeKind distinguishes display tree nodes.
type NodeKind int

const (
	TextNode NodeKind = iota
	ElementNode
	FragmentNode
)

// Props are element attributes.
type Props map[string]string

// Node is a display tree node produced by instantiating a compiled body.
type Node struct {
	Kind     NodeKind
	Tag      string
	Text     string
	Props    Props
	Children []*Node
}

// Runtime is the complete set of primitives a compiled body may call.
// Nothing else from the hosting program is reachable during instantiation.
type Runtime interface {
	// Element builds an element with at most one child.
	Element(tag string, props Props, child *Node) *Node
	// Elements builds an element with a list of children.
	Elements(tag string, props Props, children []*Node) *Node
	// Fragment groups children without a wrapping element.
	Fragment(children []*Node) *Node
}

// Component is an instantiated compiled body.
type Component func(rt Runtime) *Node

// Text returns a text leaf. Text leaves are literals, not runtime calls.
func Text(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

type treeRuntime struct{}

// NewRuntime returns the standard display tree runtime.
func NewRuntime() Runtime {
	return treeRuntime{}
}

func (treeRuntime) Element(tag string, props Props, child *Node) *Node {
	n := &Node{Kind: ElementNode, Tag: tag, Props: props}
	if child != nil {
		n.Children = []*Node{child}
	}
	return n
}

func (treeRuntime) Elements(tag string, props Props, children []*Node) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Props: props, Children: children}
}

func (treeRuntime) Fragment(children []*Node) *Node {
	return &Node{Kind: FragmentNode, Children: children}
}

// instantiate validates body and returns a component that replays its
// instructions against whatever runtime it is given.
func instantiate(body string) (Component, error) {
	a, err := DecodeArtifact(body)
	if err != nil {
		return nil, err
	}
	root := a.Root
	return func(rt Runtime) *Node {
		return execute(rt, root)
	}, nil
}

func execute(rt Runtime, in Instruction) *Node {
	switch in.Op {
	case OpText:
		return Text(in.Text)
	case OpElement:
		var child *Node
		if len(in.Children) == 1 {
			child = execute(rt, in.Children[0])
		}
		return rt.Element(in.Tag, copyProps(in.Props), child)
	case OpElements:
		return rt.Elements(in.Tag, copyProps(in.Props), executeAll(rt, in.Children))
	case OpFragment:
		return rt.Fragment(executeAll(rt, in.Children))
	}
	panic(fmt.Sprintf("mdx: unreachable instruction %q", in.Op))
}

func executeAll(rt Runtime, ins []Instruction) []*Node {
	out := make([]*Node, 0, len(ins))
	for _, in := range ins {
		out = append(out, execute(rt, in))
	}
	return out
}

func copyProps(p map[string]string) Props {
	if len(p) == 0 {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// HTML serializes the tree.
func (n *Node) HTML() (string, error) {
	var b strings.Builder
	for _, h := range n.toHTML() {
		if err := xhtml.Render(&b, h); err != nil {
			return "", fmt.Errorf("mdx: render html: %w", err)
		}
	}
	return b.String(), nil
}

// TextContent returns the concatenated text of the tree.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Find returns the first element with the given tag in depth-first order.
func (n *Node) Find(tag string) *Node {
	if n.Kind == ElementNode && n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(tag); f != nil {
			return f
		}
	}
	return nil
}

func (n *Node) toHTML() []*xhtml.Node {
	switch n.Kind {
	case TextNode:
		return []*xhtml.Node{{Type: xhtml.TextNode, Data: n.Text}}
	case FragmentNode:
		var out []*xhtml.Node
		for _, c := range n.Children {
			out = append(out, c.toHTML()...)
		}
		return out
	}

	h := &xhtml.Node{Type: xhtml.ElementNode, Data: n.Tag}
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Attr = append(h.Attr, xhtml.Attribute{Key: k, Val: n.Props[k]})
	}
	for _, c := range n.Children {
		for _, ch := range c.toHTML() {
			h.AppendChild(ch)
		}
	}
	return []*xhtml.Node{h}
}
