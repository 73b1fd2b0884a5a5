package codegen

// generateOptionalSetters writes the two setters of each optional field on
// the terminal builder: one taking the value, one taking an option. Both
// may be called any number of times; the last call wins.
func (g *Generator) generateOptionalSetters(plan *recordPlan) {
	for _, s := range plan.optional {
		inner := InnerType(s.field)

		g.writeLine("")
		g.writeDoc(s.field.Doc, "%s sets %s.", s.setter, s.field.Name)
		g.writeLine("func (%s %s%s) %s(%s %s) %s%s {",
			plan.receiver, plan.builder, plan.typeArgs,
			s.setter, s.param, inner.Expr,
			plan.builder, plan.typeArgs)
		g.indent++
		g.writeLine("%s.%s = %s(%s)", plan.receiver, s.name, g.someFunc(s), s.param)
		g.writeLine("return %s", plan.receiver)
		g.indent--
		g.writeLine("}")

		g.writeLine("")
		g.writeDoc(s.field.Doc, "%s%s sets %s from an option. An empty option clears it.", s.setter, g.opts.OptSuffix, s.field.Name)
		g.writeLine("func (%s %s%s) %s%s(%s %s) %s%s {",
			plan.receiver, plan.builder, plan.typeArgs,
			s.setter, g.opts.OptSuffix, s.param, s.field.Type.Expr,
			plan.builder, plan.typeArgs)
		g.indent++
		g.writeLine("%s.%s = %s", plan.receiver, s.name, s.param)
		g.writeLine("return %s", plan.receiver)
		g.indent--
		g.writeLine("}")
	}
}

// someFunc is the constructor wrapping a value into the field's option
// type, qualified like the option type itself.
func (g *Generator) someFunc(s *slot) string {
	if pkg := s.field.Type.Package; pkg != "" {
		return pkg + "." + g.opts.OptionConstructor
	}
	return g.opts.OptionConstructor
}
