// Package environment binds names to types.
//
// An Environment holds three independent mappings selected by symbol
// namespace: variables (including the pseudo-binding for the enclosing
// function's return type), type names, and functions. Function bindings also
// carry the function's private scope and its declaration so the checker and
// code generator can re-enter it.
//
// Environments form a chain of frames. Union does not copy: it links the two
// operands under a fresh frame, searching the right operand first.
package environment

import (
	"fmt"
	"io"
	"sort"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/typesystem"
)

// FunctionBinding is what a function symbol maps to.
type FunctionBinding struct {
	Name  symbols.Symbol
	Type  typesystem.Type
	Scope *Environment     // parameters, locals and the return pseudo-binding
	Body  *ast.Declaration // the declaring node; nil for builtins
}

type binding struct {
	name symbols.Symbol
	typ  typesystem.Type
}

type Environment struct {
	vars    map[int]binding
	types   map[int]binding
	funcs   map[int]*FunctionBinding
	parents []*Environment // searched in order after this frame
}

func New() *Environment {
	return &Environment{
		vars:  make(map[int]binding),
		types: make(map[int]binding),
		funcs: make(map[int]*FunctionBinding),
	}
}

// Union returns an environment that sees every binding of left and right,
// preferring right on collisions. Neither operand is modified, and later
// inserts into the result stay in the result.
func Union(left, right *Environment) *Environment {
	env := New()
	if right != nil {
		env.parents = append(env.parents, right)
	}
	if left != nil {
		env.parents = append(env.parents, left)
	}
	return env
}

// Lookup returns the type bound to sym in the mapping its namespace selects,
// or nil if it is unbound. Field symbols are never bound.
func (e *Environment) Lookup(sym symbols.Symbol) typesystem.Type {
	switch {
	case sym.IsVariable(), sym.IsPseudo():
		if b, ok := e.findVar(sym); ok {
			return b.typ
		}
	case sym.IsTypeName():
		if b, ok := e.findType(sym); ok {
			return b.typ
		}
	case sym.IsFunction():
		if fb := e.findFunc(sym); fb != nil {
			return fb.Type
		}
	}
	return nil
}

// ResolveType implements typesystem.Resolver.
func (e *Environment) ResolveType(name symbols.Symbol) typesystem.Type {
	if b, ok := e.findType(name); ok {
		return b.typ
	}
	return nil
}

// Contains reports whether sym is bound in its namespace's mapping.
func (e *Environment) Contains(sym symbols.Symbol) bool {
	if !sym.IsStorable() {
		panic(fmt.Sprintf("environment: Contains with unstorable symbol %#v", sym))
	}
	switch {
	case sym.IsVariable(), sym.IsPseudo():
		_, ok := e.findVar(sym)
		return ok
	case sym.IsTypeName():
		_, ok := e.findType(sym)
		return ok
	default:
		return e.findFunc(sym) != nil
	}
}

// Insert binds sym to typ in this frame, replacing any previous binding.
// A function symbol inserted this way has no scope and no body.
func (e *Environment) Insert(sym symbols.Symbol, typ typesystem.Type) {
	if !sym.IsStorable() {
		panic(fmt.Sprintf("environment: cannot bind %#v", sym))
	}
	switch {
	case sym.IsVariable(), sym.IsPseudo():
		e.vars[sym.ID()] = binding{name: sym, typ: typ}
	case sym.IsTypeName():
		e.types[sym.ID()] = binding{name: sym, typ: typ}
	default:
		e.funcs[sym.ID()] = &FunctionBinding{Name: sym, Type: typ}
	}
}

// InsertFunction binds a function together with its private scope and body.
func (e *Environment) InsertFunction(sym symbols.Symbol, typ typesystem.Type, scope *Environment, body *ast.Declaration) {
	if !sym.IsFunction() {
		panic(fmt.Sprintf("environment: InsertFunction with %#v", sym))
	}
	e.funcs[sym.ID()] = &FunctionBinding{Name: sym, Type: typ, Scope: scope, Body: body}
}

// LookupFunction returns the full binding of a function, or nil.
func (e *Environment) LookupFunction(sym symbols.Symbol) *FunctionBinding {
	if !sym.IsFunction() {
		panic(fmt.Sprintf("environment: LookupFunction with %#v", sym))
	}
	return e.findFunc(sym)
}

// LookupFunctionScope returns the private scope recorded for a function.
func (e *Environment) LookupFunctionScope(sym symbols.Symbol) *Environment {
	if fb := e.LookupFunction(sym); fb != nil {
		return fb.Scope
	}
	return nil
}

// LookupFunctionBody returns the declaration recorded for a function.
func (e *Environment) LookupFunctionBody(sym symbols.Symbol) *ast.Declaration {
	if fb := e.LookupFunction(sym); fb != nil {
		return fb.Body
	}
	return nil
}

func (e *Environment) findVar(sym symbols.Symbol) (binding, bool) {
	if b, ok := e.vars[sym.ID()]; ok {
		return b, true
	}
	for _, p := range e.parents {
		if b, ok := p.findVar(sym); ok {
			return b, true
		}
	}
	return binding{}, false
}

func (e *Environment) findType(sym symbols.Symbol) (binding, bool) {
	if b, ok := e.types[sym.ID()]; ok {
		return b, true
	}
	for _, p := range e.parents {
		if b, ok := p.findType(sym); ok {
			return b, true
		}
	}
	return binding{}, false
}

func (e *Environment) findFunc(sym symbols.Symbol) *FunctionBinding {
	if fb, ok := e.funcs[sym.ID()]; ok {
		return fb
	}
	for _, p := range e.parents {
		if fb := p.findFunc(sym); fb != nil {
			return fb
		}
	}
	return nil
}

// Functions returns every visible function binding ordered by symbol.
func (e *Environment) Functions() []*FunctionBinding {
	seen := make(map[int]*FunctionBinding)
	e.collectFuncs(seen)
	out := make([]*FunctionBinding, 0, len(seen))
	for _, fb := range seen {
		out = append(out, fb)
	}
	sort.Slice(out, func(i, j int) bool { return symbols.Compare(out[i].Name, out[j].Name) < 0 })
	return out
}

func (e *Environment) collectFuncs(seen map[int]*FunctionBinding) {
	for id, fb := range e.funcs {
		if _, ok := seen[id]; !ok {
			seen[id] = fb
		}
	}
	for _, p := range e.parents {
		p.collectFuncs(seen)
	}
}

func (e *Environment) visible(pick func(*Environment) map[int]binding) []binding {
	seen := make(map[int]binding)
	var walk func(*Environment)
	walk = func(env *Environment) {
		for id, b := range pick(env) {
			if _, ok := seen[id]; !ok {
				seen[id] = b
			}
		}
		for _, p := range env.parents {
			walk(p)
		}
	}
	walk(e)
	out := make([]binding, 0, len(seen))
	for _, b := range seen {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return symbols.Compare(out[i].name, out[j].name) < 0 })
	return out
}

// Dump writes every visible binding, functions first, then type names, then
// variables, each group in symbol order:
//
//	fun(main) |-> ((args : [[int]]) -> int, <fun_env>, <fun_body>)
func (e *Environment) Dump(w io.Writer) error {
	for _, fb := range e.Functions() {
		scope, body := "NULL", "NULL"
		if fb.Scope != nil {
			scope = "<fun_env>"
		}
		if fb.Body != nil {
			body = "<fun_body>"
		}
		if _, err := fmt.Fprintf(w, "fun(%s) |-> (%s, %s, %s)\n", fb.Name, typesystem.Format(fb.Type), scope, body); err != nil {
			return err
		}
	}
	for _, b := range e.visible(func(env *Environment) map[int]binding { return env.types }) {
		if _, err := fmt.Fprintf(w, "type(%s) |-> (%s, NULL, NULL)\n", b.name, typesystem.Format(b.typ)); err != nil {
			return err
		}
	}
	for _, b := range e.visible(func(env *Environment) map[int]binding { return env.vars }) {
		if _, err := fmt.Fprintf(w, "var(%s) |-> (%s, NULL, NULL)\n", b.name, typesystem.Format(b.typ)); err != nil {
			return err
		}
	}
	return nil
}
