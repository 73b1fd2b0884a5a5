package codegen

import "strings"

// generateEntryPoint writes the constructor returning an empty builder in
// the first phase.
func (g *Generator) generateEntryPoint(plan *recordPlan) {
	first := plan.phases[0]

	g.writeLine("// %s returns an empty builder for %s.", plan.constructor, plan.record.Name)
	if doc := trimDoc(plan.record.Doc); len(doc) > 0 {
		g.writeLine("//")
		for _, line := range doc {
			g.writeLine("%s", line)
		}
	}
	g.writeLine("func %s%s() %s%s {", plan.constructor, plan.typeParams, first.Name, plan.typeArgs)
	g.indent++
	g.writeLine("return %s%s{}", first.Name, plan.typeArgs)
	g.indent--
	g.writeLine("}")
}

// trimDoc drops empty comment lines around a doc comment, such as the
// one left above a removed directive
func trimDoc(lines []string) []string {
	blank := func(line string) bool {
		return strings.TrimSpace(strings.TrimPrefix(line, "//")) == ""
	}
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}
