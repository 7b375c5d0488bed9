package story

// Node is a single narrative beat.
// A node with options ignores its own Next; flow is decided per option. If
// conditions hide every option the node ends the dialogue when advanced.
type Node struct {
	ID      string
	Speaker Content[string]
	Text    Content[string]
	Options []Option
	Next    Content[string] // Successor node ID; absent or "" ends the dialogue
	OnEnd   []Instruction   // Run once when the dialogue closes on this node
}

// HasOptions reports whether the node presents choices.
func (n Node) HasOptions() bool {
	return len(n.Options) > 0
}

// Option is a player-selectable branch.
// On selection the interpreter merges SetFlags, then runs Effects, then
// resolves Next.
type Option struct {
	Text      Content[string]
	Condition *Condition // nil means always offered
	SetFlags  map[string]string
	Effects   []Instruction
	Next      Content[string] // absent or "" closes the dialogue
}

func (n Node) clone() Node {
	out := n
	out.OnEnd = cloneInstructions(n.OnEnd)
	if n.Options != nil {
		out.Options = make([]Option, len(n.Options))
		for i, opt := range n.Options {
			opt.Condition = opt.Condition.clone()
			opt.SetFlags = cloneFlags(opt.SetFlags)
			opt.Effects = cloneInstructions(opt.Effects)
			out.Options[i] = opt
		}
	}
	return out
}

// ResolvedNode is a node with all dynamic content evaluated against the state
// at resolution time. Next is left unresolved because it is read when the
// player advances, after effects have run. It is absent for nodes authored
// with options.
type ResolvedNode struct {
	ID      string
	Speaker string
	Text    string
	Options []ResolvedOption
	Next    Content[string]
	OnEnd   []Instruction
	Broken  bool // true for the fallback produced by a missing reference
}

// HasOptions reports whether the resolved node still offers choices after
// conditions were applied.
func (r ResolvedNode) HasOptions() bool {
	return len(r.Options) > 0
}

// ResolvedOption is an option that passed its condition.
type ResolvedOption struct {
	Index    int // Position in the presented list, 0-based
	Source   int // Position in the authored node's options
	Label    string
	SetFlags map[string]string
	Effects  []Instruction
	Next     Content[string]
}

// Hotkey is the 1-based number shown next to the option.
func (o ResolvedOption) Hotkey() int {
	return o.Index + 1
}
