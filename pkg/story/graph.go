package story

import (
	"fmt"
	"slices"
)

const (
	// FallbackSpeaker and BrokenLinkText make up the line shown in place of
	// a node that does not exist.
	FallbackSpeaker = "Narrator"
	BrokenLinkText  = "...the story hiccups. (Missing node)"
)

// Graph is an immutable set of authored nodes keyed by ID.
type Graph struct {
	name  string
	start string
	nodes map[string]Node
	order []string
}

// NewGraph builds a graph from nodes. The first node is the default start.
// Nodes are copied; later changes to the arguments do not affect the graph.
func NewGraph(nodes ...Node) (*Graph, error) {
	start := ""
	if len(nodes) > 0 {
		start = nodes[0].ID
	}
	return newGraph("", start, nodes)
}

func newGraph(name, start string, nodes []Node) (*Graph, error) {
	g := &Graph{
		name:  name,
		start: start,
		nodes: make(map[string]Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node at position %d has an empty id", len(g.order))
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		g.nodes[n.ID] = n.clone()
		g.order = append(g.order, n.ID)
	}
	if start != "" && !g.Has(start) {
		return nil, fmt.Errorf("start node %q is not in the graph", start)
	}
	return g, nil
}

// Name is the authored name of the graph, if any.
func (g *Graph) Name() string { return g.name }

// Start is the node a fresh dialogue begins at when no other is requested.
func (g *Graph) Start() string { return g.start }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether id names a node.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the authored node.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// IDs returns node IDs in authoring order.
func (g *Graph) IDs() []string {
	return slices.Clone(g.order)
}

// Resolve evaluates a node's dynamic content against view. It never mutates
// state and may be called speculatively.
//
// A missing id resolves to the broken-link fallback rather than an error.
// Errors are always *AuthoringError.
func (g *Graph) Resolve(id string, view StateView) (ResolvedNode, error) {
	node, ok := g.nodes[id]
	if !ok {
		return BrokenLink(id), nil
	}

	speaker, err := node.Speaker.Resolve(view)
	if err != nil {
		return ResolvedNode{}, &AuthoringError{NodeID: id, Field: "speaker", Err: err}
	}
	text, err := node.Text.Resolve(view)
	if err != nil {
		return ResolvedNode{}, &AuthoringError{NodeID: id, Field: "text", Err: err}
	}

	resolved := ResolvedNode{
		ID:      id,
		Speaker: speaker,
		Text:    text,
		OnEnd:   cloneInstructions(node.OnEnd),
	}
	// A node with options never follows its own Next, even when every
	// option is filtered out; advancing past it closes the dialogue.
	if !node.HasOptions() {
		resolved.Next = node.Next
	}

	for i, opt := range node.Options {
		if !opt.Condition.Holds(view) {
			continue
		}
		label, err := opt.Text.Resolve(view)
		if err != nil {
			return ResolvedNode{}, &AuthoringError{NodeID: id, Field: fmt.Sprintf("options[%d].text", i), Err: err}
		}
		resolved.Options = append(resolved.Options, ResolvedOption{
			Index:    len(resolved.Options),
			Source:   i,
			Label:    label,
			SetFlags: cloneFlags(opt.SetFlags),
			Effects:  cloneInstructions(opt.Effects),
			Next:     opt.Next,
		})
	}

	return resolved, nil
}

// BrokenLink is the narrator line shown in place of a missing node.
func BrokenLink(id string) ResolvedNode {
	return ResolvedNode{
		ID:      id,
		Speaker: FallbackSpeaker,
		Text:    BrokenLinkText,
		Broken:  true,
	}
}
