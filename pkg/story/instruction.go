package story

import (
	"maps"
)

// Op names an instruction the interpreter knows how to execute.
type Op string

const (
	OpSetFlag  Op = "set_flag" // Set Key to Value
	OpJournal  Op = "journal"  // Append Text to the journal, once per distinct text
	OpComplete Op = "complete" // Mark Key completed; run OnFirst only the first time
	OpGoal     Op = "goal"     // Replace the current objective with Text
	OpCall     Op = "call"     // Invoke the named effect Key
)

// IsValid reports whether op is one of the known instruction ops.
func (op Op) IsValid() bool {
	switch op {
	case OpSetFlag, OpJournal, OpComplete, OpGoal, OpCall:
		return true
	}
	return false
}

// Instruction is one side effect of choosing an option or ending a node.
// Effects are data rather than closures so story content stays inspectable
// and can be authored in files.
type Instruction struct {
	Op      Op
	Key     string          // Flag name, marker or effect name depending on Op
	Value   string          // Flag value for OpSetFlag
	Text    Content[string] // Journal entry or goal text
	OnFirst []Instruction   // OpComplete only
	When    *Condition      // Skip the instruction unless this holds
}

// SetFlag sets a single flag.
func SetFlag(name, value string) Instruction {
	return Instruction{Op: OpSetFlag, Key: name, Value: value}
}

// Journal appends a static journal entry.
func Journal(text string) Instruction {
	return Instruction{Op: OpJournal, Text: Static(text)}
}

// JournalContent appends a possibly derived journal entry.
func JournalContent(text Content[string]) Instruction {
	return Instruction{Op: OpJournal, Text: text}
}

// Complete marks a one-time interaction done and runs onFirst only when
// this is the first completion.
func Complete(marker string, onFirst ...Instruction) Instruction {
	return Instruction{Op: OpComplete, Key: marker, OnFirst: onFirst}
}

// Goal replaces the current objective.
func Goal(text string) Instruction {
	return Instruction{Op: OpGoal, Text: Static(text)}
}

// Call invokes a named effect registered with the interpreter.
func Call(name string) Instruction {
	return Instruction{Op: OpCall, Key: name}
}

// If returns a copy of the instruction guarded by cond.
func (i Instruction) If(cond Condition) Instruction {
	i.When = &cond
	return i
}

func cloneInstructions(in []Instruction) []Instruction {
	if in == nil {
		return nil
	}
	out := make([]Instruction, len(in))
	for idx, ins := range in {
		ins.When = ins.When.clone()
		ins.OnFirst = cloneInstructions(ins.OnFirst)
		out[idx] = ins
	}
	return out
}

func cloneFlags(in map[string]string) map[string]string {
	return maps.Clone(in)
}
