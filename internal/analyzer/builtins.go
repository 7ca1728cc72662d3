package analyzer

import (
	"github.com/funvibe/liger/internal/config"
	"github.com/funvibe/liger/internal/typesystem"
)

// RegisterBuiltins binds the runtime functions that are not already bound.
// A user declaration of the same name takes precedence. An array with no
// element type stands for "any array".
func (a *Analyzer) RegisterBuiltins() {
	anyArray := typesystem.NewArray(nil)
	param := func(name string, t typesystem.Type) typesystem.Field {
		return typesystem.Field{Name: a.names.Variable(name), Type: t}
	}

	builtins := []struct {
		name string
		typ  typesystem.Type
	}{
		// resize: ([?], int) -> [?]; the call site narrows the result
		{config.ResizeFuncName, typesystem.NewFunc(
			[]typesystem.Field{param("arr", anyArray), param("new_size", typesystem.Int)},
			anyArray,
		)},
		{config.SizeofFuncName, typesystem.NewFunc(
			[]typesystem.Field{param("arr", anyArray)},
			typesystem.Int,
		)},
		{config.PrintFuncName, typesystem.NewFunc(
			[]typesystem.Field{param("what", typesystem.NewArray(typesystem.Int))},
			typesystem.Void,
		)},
		{config.GetcharFuncName, typesystem.NewFunc(nil, typesystem.Int)},
	}

	for _, b := range builtins {
		sym := a.names.Function(b.name)
		if a.env.Contains(sym) {
			a.logger.Printf("builtin %s shadowed by user declaration", b.name)
			continue
		}
		a.env.InsertFunction(sym, b.typ, nil, nil)
	}
}
