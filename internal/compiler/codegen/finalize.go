package codegen

// generateFinalize writes the method turning a buildable builder into the
// record. A required slot is only nil on a builder that was not obtained
// through the constructor.
func (g *Generator) generateFinalize(plan *recordPlan) {
	g.writeLine("")
	g.writeLine("// %s returns the %s.", g.opts.FinalizeMethod, plan.record.Name)
	g.writeLine("func (%s %s%s) %s() %s {",
		plan.receiver, plan.builder, plan.typeArgs,
		g.opts.FinalizeMethod, plan.recordType())
	g.indent++

	g.writeLine("return %s{", plan.recordType())
	g.indent++
	for _, s := range plan.slots {
		if s.optional {
			g.writeLine("%s: %s.%s,", s.field.Name, plan.receiver, s.name)
		} else {
			g.writeLine("%s: *%s.%s,", s.field.Name, plan.receiver, s.name)
		}
	}
	g.indent--
	g.writeLine("}")

	g.indent--
	g.writeLine("}")
}
