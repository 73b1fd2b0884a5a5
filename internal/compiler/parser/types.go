package parser

import (
	"fmt"
	goast "go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// ParseTypeExpr parses a Go type expression written as text, as found in
// schema files.
func ParseTypeExpr(src string, loc ast.SourceLocation) (*ast.TypeNode, error) {
	if src == "" {
		return nil, fmt.Errorf("empty type")
	}

	expr, err := goparser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	if !isTypeExpr(expr) {
		return nil, fmt.Errorf("not a type expression")
	}

	return TypeFromExpr(expr, loc), nil
}

// ParseTypeParams parses a type parameter list written without brackets,
// e.g. "K comparable, V any".
func ParseTypeParams(src string, loc ast.SourceLocation) ([]*ast.TypeParamNode, error) {
	if src == "" {
		return nil, nil
	}

	file, err := goparser.ParseFile(token.NewFileSet(), "", "package p\ntype _["+src+"] struct{}", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid type parameters %q", src)
	}

	ts := file.Decls[0].(*goast.GenDecl).Specs[0].(*goast.TypeSpec)
	if ts.TypeParams == nil {
		return nil, fmt.Errorf("invalid type parameters %q", src)
	}

	var params []*ast.TypeParamNode
	for _, field := range ts.TypeParams.List {
		param := &ast.TypeParamNode{
			Constraint: types.ExprString(field.Type),
			Qualifiers: collectQualifiers(field.Type),
			Loc:        loc,
		}
		for _, name := range field.Names {
			param.Names = append(param.Names, name.Name)
		}
		params = append(params, param)
	}
	return params, nil
}

// TypeFromExpr converts a go/ast type expression into a TypeNode.
func TypeFromExpr(expr goast.Expr, loc ast.SourceLocation) *ast.TypeNode {
	node := &ast.TypeNode{
		Expr:       types.ExprString(expr),
		Qualifiers: collectQualifiers(expr),
		Loc:        loc,
	}

	switch e := unparen(expr).(type) {
	case *goast.Ident:
		node.Kind = ast.TypeNamed
		node.Name = e.Name
	case *goast.SelectorExpr:
		node.Kind = ast.TypeNamed
		node.Name = e.Sel.Name
		if pkg, ok := e.X.(*goast.Ident); ok {
			node.Package = pkg.Name
		}
	case *goast.IndexExpr:
		named := TypeFromExpr(e.X, loc)
		node.Kind = named.Kind
		node.Name = named.Name
		node.Package = named.Package
		node.Args = []*ast.TypeNode{TypeFromExpr(e.Index, loc)}
	case *goast.IndexListExpr:
		named := TypeFromExpr(e.X, loc)
		node.Kind = named.Kind
		node.Name = named.Name
		node.Package = named.Package
		for _, idx := range e.Indices {
			node.Args = append(node.Args, TypeFromExpr(idx, loc))
		}
	case *goast.StarExpr:
		node.Kind = ast.TypePointer
	case *goast.ArrayType:
		if e.Len == nil {
			node.Kind = ast.TypeSlice
		} else {
			node.Kind = ast.TypeArray
		}
	case *goast.MapType:
		node.Kind = ast.TypeMap
	case *goast.ChanType:
		node.Kind = ast.TypeChan
	case *goast.FuncType:
		node.Kind = ast.TypeFunc
	case *goast.InterfaceType:
		node.Kind = ast.TypeInterface
	case *goast.StructType:
		node.Kind = ast.TypeStruct
	default:
		node.Kind = ast.TypeOther
	}

	return node
}

// embeddedName returns the implicit field name of an embedded field type:
// the type name without pointer, qualifier or type arguments.
func embeddedName(expr goast.Expr) string {
	switch e := unparen(expr).(type) {
	case *goast.Ident:
		return e.Name
	case *goast.SelectorExpr:
		return e.Sel.Name
	case *goast.StarExpr:
		return embeddedName(e.X)
	case *goast.IndexExpr:
		return embeddedName(e.X)
	case *goast.IndexListExpr:
		return embeddedName(e.X)
	}
	return ""
}

// collectQualifiers returns the package names referenced by selector
// expressions in expr, in first-seen order.
func collectQualifiers(expr goast.Expr) []string {
	var quals []string
	seen := make(map[string]bool)

	goast.Inspect(expr, func(n goast.Node) bool {
		sel, ok := n.(*goast.SelectorExpr)
		if !ok {
			return true
		}
		if pkg, ok := sel.X.(*goast.Ident); ok && !seen[pkg.Name] {
			seen[pkg.Name] = true
			quals = append(quals, pkg.Name)
		}
		return false
	})

	return quals
}

func unparen(expr goast.Expr) goast.Expr {
	for {
		p, ok := expr.(*goast.ParenExpr)
		if !ok {
			return expr
		}
		expr = p.X
	}
}

// isTypeExpr rejects expressions that parse but cannot denote a type,
// such as literals or calls.
func isTypeExpr(expr goast.Expr) bool {
	switch e := unparen(expr).(type) {
	case *goast.Ident, *goast.ArrayType, *goast.MapType, *goast.ChanType,
		*goast.FuncType, *goast.InterfaceType, *goast.StructType:
		return true
	case *goast.SelectorExpr:
		_, ok := e.X.(*goast.Ident)
		return ok
	case *goast.StarExpr:
		return isTypeExpr(e.X)
	case *goast.IndexExpr:
		return isTypeExpr(e.X) && isTypeExpr(e.Index)
	case *goast.IndexListExpr:
		if !isTypeExpr(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	}
	return false
}
