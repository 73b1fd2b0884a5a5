package codegen

import (
	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// generatePhaseType writes the struct of one phase. Every phase carries
// the same slots behind its own marker: a per-phase tag declared here, or
// the shared terminal marker.
func (g *Generator) generatePhaseType(plan *recordPlan, phase Phase) {
	if phase.Terminal() {
		g.writeLine("// %s builds %s. Every required field has been supplied.", phase.Name, plan.record.Name)
	} else {
		g.writeLine("// %s marks %s.", phase.Tag, phase.Name)
		g.writeLine("type %s struct{}", phase.Tag)
		g.writeLine("")
		g.writeLine("// %s builds %s and waits for %s.", phase.Name, plan.record.Name, phase.Field.Name)
	}

	g.writeLine("type %s%s struct {", phase.Name, plan.typeParams)
	g.indent++

	g.writeLine("_ %s", phase.Tag)
	if len(plan.slots) > 0 {
		g.writeLine("")
	}
	for _, s := range plan.slots {
		g.writeLine("%s %s", s.name, slotType(s.field))
	}

	g.indent--
	g.writeLine("}")
}

// slotType is the type a field is held as while building: a pointer for a
// required field, nil until supplied, or the option itself.
func slotType(f *ast.FieldNode) string {
	if IsOptional(f) {
		return f.Type.Expr
	}
	return "*" + f.Type.Expr
}
