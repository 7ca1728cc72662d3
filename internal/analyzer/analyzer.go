package analyzer

import (
	"io"
	"log"

	"github.com/funvibe/liger/internal/ast"
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/environment"
	"github.com/funvibe/liger/internal/symbols"
	"github.com/funvibe/liger/internal/typesystem"
)

// Analyzer type-checks one program. Inferred types are not stored on the
// tree; they go into TypeMap, and a node missing from it did not check.
type Analyzer struct {
	names   *symbols.Interner
	env     *environment.Environment
	TypeMap map[ast.Node]typesystem.Type

	logger   *log.Logger
	maxDepth int
	depth    int
	tooDeep  map[ast.Node]bool

	returnSym symbols.Symbol
	resizeSym symbols.Symbol
	mainSym   symbols.Symbol
}

// New creates an Analyzer that interns through names. The interner must be
// the one the parser used.
func New(names *symbols.Interner) *Analyzer {
	return &Analyzer{
		names:     names,
		env:       environment.New(),
		TypeMap:   make(map[ast.Node]typesystem.Type),
		tooDeep:   make(map[ast.Node]bool),
		logger:    log.New(io.Discard, "", 0),
		maxDepth:  config.DefaultMaxDepth,
		returnSym: names.Pseudo(config.ReturnSymbolName),
		resizeSym: names.Function(config.ResizeFuncName),
		mainSym:   names.Function(config.MainFuncName),
	}
}

func (a *Analyzer) SetLogger(l *log.Logger) {
	if l != nil {
		a.logger = l
	}
}

// SetMaxDepth bounds expression and statement nesting during annotation.
// Nodes nested deeper are left untyped.
func (a *Analyzer) SetMaxDepth(n int) {
	if n > 0 {
		a.maxDepth = n
	}
}

// Env is the global environment: every top-level declaration plus the
// builtins. Function bindings carry their own scope for later re-entry.
func (a *Analyzer) Env() *environment.Environment {
	return a.env
}

// Analyze runs the insertion pre-pass, seeds the builtins and annotates
// every declaration. It reports whether every top-level declaration is ok.
// Each call starts from a fresh environment and type map.
func (a *Analyzer) Analyze(program *ast.Program) bool {
	a.env = environment.New()
	a.TypeMap = make(map[ast.Node]typesystem.Type)
	a.tooDeep = make(map[ast.Node]bool)
	a.depth = 0
	if program == nil {
		return true
	}

	for _, decl := range program.Declarations {
		a.insertDecl(decl, a.env)
	}
	a.RegisterBuiltins()

	for _, decl := range program.Declarations {
		a.annotateDecl(decl, a.env)
	}

	ok := a.AllOk(program)
	a.logger.Printf("checked %d declarations, all ok: %v", len(program.Declarations), ok)
	return ok
}

// AllOk reports whether every top-level declaration was annotated Ok.
// A conflicting declaration always fails it.
func (a *Analyzer) AllOk(program *ast.Program) bool {
	if program == nil {
		return true
	}
	for _, decl := range program.Declarations {
		if !typesystem.IsOk(a.TypeOf(decl)) {
			return false
		}
	}
	return true
}

// CheckMain reports whether main is bound with type ([[int]]) -> int.
// Parameter names do not matter.
func (a *Analyzer) CheckMain() bool {
	want := typesystem.NewFunc(
		[]typesystem.Field{{
			Name: a.names.Variable("args"),
			Type: typesystem.NewArray(typesystem.NewArray(typesystem.Int)),
		}},
		typesystem.Int,
	)
	return typesystem.Equal(want, a.env.Lookup(a.mainSym))
}

// TypeOf returns the annotation of node, or nil if it has none.
func (a *Analyzer) TypeOf(node ast.Node) typesystem.Type {
	return a.TypeMap[node]
}

func (a *Analyzer) set(node ast.Node, t typesystem.Type) typesystem.Type {
	if t == nil {
		delete(a.TypeMap, node)
		return nil
	}
	a.TypeMap[node] = t
	return t
}

// enter bumps the nesting depth. Past the limit it returns false, and the
// caller leaves node untyped without looking at its children.
func (a *Analyzer) enter(node ast.Node) bool {
	a.depth++
	if a.depth <= a.maxDepth {
		return true
	}
	a.tooDeep[node] = true
	return false
}

func (a *Analyzer) leave() {
	a.depth--
}
