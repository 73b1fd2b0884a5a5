package codegen

import (
	"fmt"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	utilstrings "github.com/conduit-lang/typestate/internal/util/strings"
)

// TerminalMarker is the zero-size type shared by every buildable builder
// in a package.
const TerminalMarker = "CanBuild"

// Phase is one state of a record's construction state machine
type Phase struct {
	// Index is 1-based; the terminal phase has Index len(required)+1
	Index int

	// Name is the Go type name of the builder in this phase
	Name string

	// Tag is the zero-size marker type leading the builder struct. Phases
	// of one record differ only in their tag, so none converts to another.
	Tag string

	// Field is the required field this phase waits for; nil for the
	// terminal phase
	Field *ast.FieldNode
}

// Terminal reports whether the phase is the buildable one
func (p Phase) Terminal() bool {
	return p.Field == nil
}

// BuildPhases derives the R+1 phases of a record with R required fields:
// {T}BuilderPhase1..R, one per required field in order, then the terminal
// {T}Builder.
func BuildPhases(record string, required []*ast.FieldNode) []Phase {
	phases := make([]Phase, 0, len(required)+1)
	for i, f := range required {
		phases = append(phases, Phase{
			Index: i + 1,
			Name:  PhaseTypeName(record, i+1),
			Tag:   PhaseTagName(record, i+1),
			Field: f,
		})
	}

	phases = append(phases, Phase{
		Index: len(required) + 1,
		Name:  BuilderTypeName(record),
		Tag:   TerminalMarker,
	})
	return phases
}

// PhaseTypeName names the builder waiting for the k-th required field
func PhaseTypeName(record string, k int) string {
	return fmt.Sprintf("%sBuilderPhase%d", record, k)
}

// PhaseTagName names the marker of the k-th phase. It is unexported
// whatever the record's visibility.
func PhaseTagName(record string, k int) string {
	return utilstrings.ToUnexported(PhaseTypeName(record, k)) + "Tag"
}

// BuilderTypeName names the terminal builder
func BuilderTypeName(record string) string {
	return record + "Builder"
}

// generateCanBuild writes the shared terminal marker
func (g *Generator) generateCanBuild() {
	g.writeLine("// %s tags a builder whose required fields have all been supplied.", TerminalMarker)
	g.writeLine("// It is shared by every builder in this package.")
	g.writeLine("type %s struct{}", TerminalMarker)
}
