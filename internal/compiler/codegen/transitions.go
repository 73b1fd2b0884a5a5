package codegen

// generateTransition writes the setter of the field a phase waits for. It
// is the only method of the phase and returns the next one.
func (g *Generator) generateTransition(plan *recordPlan, phase Phase) {
	s := plan.slotFor(phase.Field)
	next := plan.phases[phase.Index]

	g.writeLine("")
	g.writeDoc(s.field.Doc, "%s sets %s and advances to %s.", s.setter, s.field.Name, next.Name)
	g.writeLine("func (%s %s%s) %s(%s %s) %s%s {",
		plan.receiver, phase.Name, plan.typeArgs,
		s.setter, s.param, s.field.Type.Expr,
		next.Name, plan.typeArgs)
	g.indent++

	g.writeLine("return %s%s{", next.Name, plan.typeArgs)
	g.indent++
	g.writeLine("%s: &%s,", s.name, s.param)
	for _, f := range Exclude(plan.fields, s.field.Name) {
		other := plan.slotFor(f)
		g.writeLine("%s: %s.%s,", other.name, plan.receiver, other.name)
	}
	g.indent--
	g.writeLine("}")

	g.indent--
	g.writeLine("}")
}
