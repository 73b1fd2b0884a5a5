package codegen

import (
	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// generateStruct declares a record that exists only in a schema file.
// Column alignment is left to go/format.
func (g *Generator) generateStruct(record *ast.RecordNode) {
	g.writeDoc(record.Doc, "%s is generated from its schema declaration.", record.Name)

	params, _ := typeParamLists(record.TypeParams)
	g.writeLine("type %s%s struct {", record.Name, params)
	g.indent++
	for _, f := range record.Fields {
		for _, line := range f.Doc {
			g.writeLine("%s", line)
		}
		if f.Tag != "" {
			g.writeLine("%s %s %s", f.Name, f.Type.Expr, f.Tag)
		} else {
			g.writeLine("%s %s", f.Name, f.Type.Expr)
		}
	}
	g.indent--
	g.writeLine("}")
}
