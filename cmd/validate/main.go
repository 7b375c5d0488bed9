package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/nevermore/pkg/state"
	"github.com/jwebster45206/nevermore/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json|story.yaml> [more files...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &StoryValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// StoryValidator checks a story graph or sequence file for problems the
// loader alone does not catch: naming conventions, next cases pointing at
// missing nodes and templates that fail to render.
type StoryValidator struct {
	errors []string

	// Set once Graph.Validate has run; it already reports empty conditions.
	graphChecked bool
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	format, err := story.FormatFromPath(filename)
	if err != nil {
		return err
	}

	baseName := filepath.Base(filename)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidFilename(nameWithoutExt) {
		return fmt.Errorf("story filename '%s' must be lowercase snake_case (e.g., my_story.yaml, not my-story.yaml or MyStory.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	kind, err := detectKind(data)
	if err != nil {
		return fmt.Errorf("file %s is not valid %s: %w", filename, format, err)
	}

	switch kind {
	case kindGraph:
		spec, err := story.DecodeGraphSpec(bytes.NewReader(data), format)
		if err != nil {
			return fmt.Errorf("file %s failed strict decoding: %w", filename, err)
		}
		v.validateGraph(spec)
	case kindSequence:
		spec, err := story.DecodeSequenceSpec(bytes.NewReader(data), format)
		if err != nil {
			return fmt.Errorf("file %s failed strict decoding: %w", filename, err)
		}
		v.validateSequence(spec)
	default:
		return fmt.Errorf("file %s has neither 'nodes' nor 'lines'", filename)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

type fileKind int

const (
	kindUnknown fileKind = iota
	kindGraph
	kindSequence
)

// detectKind peeks at the top-level keys. YAML is a superset of JSON, so one
// decoder covers both formats.
func detectKind(data []byte) (fileKind, error) {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return kindUnknown, err
	}
	if _, ok := top["nodes"]; ok {
		return kindGraph, nil
	}
	if _, ok := top["lines"]; ok {
		return kindSequence, nil
	}
	return kindUnknown, nil
}

func (v *StoryValidator) validateGraph(spec story.GraphSpec) {
	if len(spec.Nodes) == 0 {
		v.addError("graph has no nodes")
		return
	}
	v.validateIDFormat("start node", spec.Start)

	g, err := story.Compile(spec)
	if err != nil {
		v.addErrors(err)
		return
	}
	if err := g.Validate(); err != nil {
		v.addErrors(err)
	}
	v.graphChecked = true

	for _, id := range g.IDs() {
		node := spec.Nodes[id]
		v.validateIDFormat("node ID", id)
		v.validateNext(g, node.Next, fmt.Sprintf("node %s", id))
		v.validateInstructions(node.OnEnd, fmt.Sprintf("node %s on_end", id))

		for i, opt := range node.Options {
			where := fmt.Sprintf("node %s option %d", id, i+1)
			v.validateCondition(opt.When, where)
			v.validateFlagNames(opt.SetFlags, where)
			v.validateInstructions(opt.Effects, where+" effects")
			v.validateNext(g, opt.Next, where)
		}
	}
}

// validateNext checks conditional cases. Plain targets are already covered
// by Graph.Validate.
func (v *StoryValidator) validateNext(g *story.Graph, next *story.NextSpec, context string) {
	if next == nil || len(next.Cases) == 0 {
		return
	}
	for i, c := range next.Cases {
		where := fmt.Sprintf("%s next case %d", context, i+1)
		if c.When.IsEmpty() {
			v.addError(fmt.Sprintf("%s has empty 'when' clause - no conditions specified", where))
		} else {
			v.validateCondition(&c.When, where)
		}
		if c.To != "" && !g.Has(c.To) {
			v.addError(fmt.Sprintf("%s points at unknown node '%s'", where, c.To))
		}
	}
	if next.Default != "" && !g.Has(next.Default) {
		v.addError(fmt.Sprintf("%s next default points at unknown node '%s'", context, next.Default))
	}
}

func (v *StoryValidator) validateSequence(spec story.SequenceSpec) {
	if len(spec.Lines) == 0 {
		v.addError("sequence has no lines")
	}
	v.validateIDFormat("sequence name", spec.Name)
	v.validateInstructions(spec.OnEnd, "on_end")
	v.validateLines(spec.Lines, "line")

	// Templates are only checked by rendering against a sample player.
	sample := state.New(story.Player{Name: "Sample", Heritage: "Psychic", Hair: "Raven Fringe", Outfit: "Violet Uniform"})
	if _, err := spec.Render(sample); err != nil {
		v.addError(fmt.Sprintf("sequence failed to render: %v", err))
	}
}

func (v *StoryValidator) validateLines(lines []story.LineSpec, prefix string) {
	for i, line := range lines {
		where := fmt.Sprintf("%s %d", prefix, i+1)
		if strings.TrimSpace(line.Text) == "" {
			v.addError(fmt.Sprintf("%s has no text", where))
		}
		for j, br := range line.Branches {
			at := fmt.Sprintf("%s branch %d", where, j+1)
			if strings.TrimSpace(br.Text) == "" {
				v.addError(fmt.Sprintf("%s has no text", at))
			}
			v.validateCondition(br.When, at)
			v.validateFlagNames(br.SetFlags, at)
			v.validateInstructions(br.Effects, at+" effects")
			v.validateLines(br.Next, at+" line")
		}
	}
}

func (v *StoryValidator) validateInstructions(list []story.InstructionSpec, context string) {
	for i, ins := range list {
		where := fmt.Sprintf("%s[%d]", context, i)
		v.validateCondition(ins.When, where)

		switch story.Op(ins.Op) {
		case story.OpSetFlag:
			v.validateVariableName(where, ins.Flag)
		case story.OpComplete:
			v.validateIDFormat(where+" marker", ins.Marker)
			v.validateInstructions(ins.OnFirst, where+".on_first")
		case story.OpCall:
			v.validateIDFormat(where+" effect name", ins.Name)
		}
	}
}

func (v *StoryValidator) validateCondition(when *story.Condition, context string) {
	if when == nil {
		return
	}
	if when.IsEmpty() {
		if !v.graphChecked {
			v.addError(fmt.Sprintf("%s has empty 'when' clause - no conditions specified", context))
		}
		return
	}
	v.validateFlagNames(when.Flags, context)
	for _, m := range slices.Concat(when.Markers, when.MissingMarkers) {
		v.validateIDFormat(context+" marker", m)
	}
}

func (v *StoryValidator) validateFlagNames(flags map[string]string, context string) {
	for name := range flags {
		v.validateVariableName(context, name)
	}
}

func (v *StoryValidator) validateVariableName(context, name string) {
	if !isValidVariableName(name) {
		v.addError(fmt.Sprintf("%s has invalid flag name '%s' - should be lowercase snake_case", context, name))
	}
}

func (v *StoryValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

// addErrors splits a joined error into one entry per line.
func (v *StoryValidator) addErrors(err error) {
	for line := range strings.SplitSeq(err.Error(), "\n") {
		if line != "" {
			v.addError(line)
		}
	}
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validVarRegex      = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidVariableName(name string) bool {
	return validVarRegex.MatchString(name)
}

func isValidFilename(name string) bool {
	// Allow 'x.' prefix for experimental stories
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
