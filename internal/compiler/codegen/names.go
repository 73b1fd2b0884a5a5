package codegen

import (
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
	"github.com/conduit-lang/typestate/internal/compiler/errors"
	utilstrings "github.com/conduit-lang/typestate/internal/util/strings"
)

// slot is one field of a builder: the record field it fills and the
// unexported name it is stored under.
type slot struct {
	field    *ast.FieldNode
	name     string // builder field name
	setter   string // exported method name
	param    string // setter parameter name
	optional bool
}

// recordPlan is everything the emitters need for one record
type recordPlan struct {
	record   *ast.RecordNode
	fields   []*ast.FieldNode // settable fields in declaration order
	slots    []*slot
	required []*slot
	optional []*slot
	phases   []Phase

	builder     string // terminal builder type name
	constructor string
	receiver    string
	typeParams  string // "[K comparable, V any]" or ""
	typeArgs    string // "[K, V]" or ""
}

// slotFor returns the slot of a field
func (p *recordPlan) slotFor(f *ast.FieldNode) *slot {
	for _, s := range p.slots {
		if s.field == f {
			return s
		}
	}
	return nil
}

// recordType is the record's type as used in signatures, e.g. "Pair[K, V]"
func (p *recordPlan) recordType() string {
	return p.record.Name + p.typeArgs
}

// planRecord classifies a record's fields and names everything the
// emitters will write.
func (g *Generator) planRecord(record *ast.RecordNode, prog *ast.Program) (*recordPlan, errors.ErrorList) {
	var errs errors.ErrorList

	if !token.IsIdentifier(record.Name) {
		errs = append(errs, errors.NewInvalidGoIdentifier(record.Loc, record.Name, "not a Go identifier"))
		return nil, errs
	}

	plan := &recordPlan{
		record:      record,
		builder:     BuilderTypeName(record.Name),
		constructor: g.constructorName(record),
	}
	plan.typeParams, plan.typeArgs = typeParamLists(record.TypeParams)

	reserved := reservedNames(record)
	// Parameters must not shadow the types and constructor the method
	// bodies refer to.
	reserved[record.Name] = true
	reserved[plan.builder] = true
	reserved[plan.constructor] = true
	for k := 1; k <= len(record.Fields); k++ {
		reserved[PhaseTypeName(record.Name, k)] = true
		reserved[PhaseTagName(record.Name, k)] = true
	}
	plan.receiver = "b"
	if reserved[plan.receiver] {
		plan.receiver = pickName("builder", reserved)
	}
	reserved[plan.receiver] = true

	// Blank fields can be neither set nor read. Names must also differ
	// ignoring case, since slots are carried over by Exclude.
	fields := make([]*ast.FieldNode, 0, len(record.Fields))
	folded := make(map[string]*ast.FieldNode)
	for _, f := range record.Fields {
		if f.Name == "_" {
			continue
		}
		if !token.IsIdentifier(f.Name) {
			errs = append(errs, errors.NewInvalidGoIdentifier(f.Loc, f.Name, "not a Go identifier"))
			continue
		}
		key := strings.ToLower(f.Name)
		if prev, ok := folded[key]; ok {
			errs = append(errs, errors.NewMethodCollision(f.Loc, plan.builder, utilstrings.ToExported(f.Name), prev.Name, f.Name))
			continue
		}
		folded[key] = f
		fields = append(fields, f)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	plan.fields = fields
	required, optional := Classify(fields)

	usedSlots := make(map[string]bool)
	for _, f := range fields {
		s := &slot{
			field:    f,
			name:     uniqueName(safeIdent(utilstrings.ToUnexported(f.Name)), usedSlots),
			setter:   utilstrings.ToExported(f.Name),
			param:    pickName(safeIdent(utilstrings.ToUnexported(f.Name)), reserved),
			optional: IsOptional(f),
		}
		usedSlots[s.name] = true
		plan.slots = append(plan.slots, s)
	}
	for _, f := range required {
		plan.required = append(plan.required, plan.slotFor(f))
	}
	for _, f := range optional {
		plan.optional = append(plan.optional, plan.slotFor(f))
	}

	plan.phases = BuildPhases(record.Name, required)

	errs = append(errs, g.checkCollisions(plan, prog)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return plan, nil
}

// checkCollisions reports methods generated twice on the terminal builder
// and top-level names the package already declares.
func (g *Generator) checkCollisions(plan *recordPlan, prog *ast.Program) errors.ErrorList {
	var errs errors.ErrorList

	methods := map[string]string{g.opts.FinalizeMethod: "finalize method"}
	for _, s := range plan.optional {
		for _, name := range []string{s.setter, s.setter + g.opts.OptSuffix} {
			if owner, ok := methods[name]; ok {
				errs = append(errs, errors.NewMethodCollision(s.field.Loc, plan.builder, name, owner, s.field.Name))
				continue
			}
			methods[name] = s.field.Name
		}
	}

	names := []string{plan.constructor}
	if plan.record.Declare {
		names = append(names, plan.record.Name)
	}
	for _, ph := range plan.phases {
		names = append(names, ph.Name)
		if !ph.Terminal() {
			names = append(names, ph.Tag)
		}
	}
	for _, name := range names {
		if prog != nil && prog.IsDeclared(name) {
			errs = append(errs, errors.NewNameTaken(plan.record.Loc, name, plan.record.Name))
		}
	}

	return errs
}

// constructorName names the entry point; its visibility follows the record.
func (g *Generator) constructorName(record *ast.RecordNode) string {
	name := g.opts.ConstructorPrefix + utilstrings.ToExported(record.Name) + "Builder"
	if record.Exported() {
		return name
	}
	return utilstrings.ToUnexported(name)
}

// typeParamLists renders a record's type parameters for declarations and
// for instantiation.
func typeParamLists(params []*ast.TypeParamNode) (decl, args string) {
	if len(params) == 0 {
		return "", ""
	}

	var declParts, argParts []string
	for _, p := range params {
		declParts = append(declParts, strings.Join(p.Names, ", ")+" "+p.Constraint)
		argParts = append(argParts, p.Names...)
	}
	return "[" + strings.Join(declParts, ", ") + "]", "[" + strings.Join(argParts, ", ") + "]"
}

// reservedNames lists identifiers a generated parameter or receiver must
// not shadow: package qualifiers used by field types and type parameters.
func reservedNames(record *ast.RecordNode) map[string]bool {
	reserved := make(map[string]bool)
	for _, p := range record.TypeParams {
		for _, n := range p.Names {
			reserved[n] = true
		}
	}
	for _, p := range record.TypeParams {
		for _, q := range p.Qualifiers {
			reserved[q] = true
		}
	}
	for _, f := range record.Fields {
		if f.Type == nil {
			continue
		}
		for _, q := range f.Type.Qualifiers {
			reserved[q] = true
		}
	}
	return reserved
}

// safeIdent avoids keywords and predeclared identifiers
func safeIdent(name string) string {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil {
		return name + "Value"
	}
	return name
}

// pickName returns name, or name with a suffix when it is reserved
func pickName(name string, reserved map[string]bool) string {
	if !reserved[name] {
		return name
	}
	return uniqueName(name+"Value", reserved)
}

// uniqueName appends a counter until name is not in used
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
}
