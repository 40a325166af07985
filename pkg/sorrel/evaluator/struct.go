package evaluator

import (
	"github.com/iancoleman/orderedmap"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/ast"
	serrors "github.com/sorrel-lang/sorrel/pkg/sorrel/errors"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/lexer"
)

// evalTypeStatement builds a type descriptor. Field defaults are
// evaluated once, here; construction deep-copies them per instance so no
// two instances ever share a default aggregate.
func evalTypeStatement(node *ast.TypeStatement, env *Environment) Object {
	st := &StructType{
		Name:    node.Name.Value,
		Methods: make(map[string]*Function),
	}

	for _, decl := range node.Fields {
		spec := &FieldSpec{
			Name:       decl.Name,
			Annotation: decl.Annotation,
			Optional:   decl.Optional,
		}
		if decl.Default != nil {
			val := Eval(decl.Default, env)
			if isRaised(val) {
				return val
			}
			spec.Default = val
			spec.HasDefault = true
		}
		st.Fields = append(st.Fields, spec)
	}

	for _, m := range node.Methods {
		st.Methods[m.Name.Value] = &Function{
			Name:   m.Name.Value,
			Params: m.Function.Params,
			Body:   m.Function.Body,
			Env:    env,
		}
	}

	env.Set(st.Name, st)
	return NULL
}

// constructStruct instantiates a type from call arguments: positional
// arguments fill fields in declaration order, named arguments fill by
// name. Every fault fires before the instance exists, so a failed
// construction never leaks a half-built value.
func constructStruct(st *StructType, args []callArg, tok lexer.Token, env *Environment) Object {
	env.PushFrame(st.Name, tok.Line, tok.Column)
	defer env.PopFrame()

	provided := make(map[string]Object)

	posIdx := 0
	for _, a := range args {
		if a.name != "" {
			continue
		}
		if posIdx >= len(st.Fields) {
			return throw(env, tok, serrors.KindArg,
				"%s takes at most %d arguments, got more", st.Name, len(st.Fields))
		}
		provided[st.Fields[posIdx].Name] = a.value
		posIdx++
	}

	for _, a := range args {
		if a.name == "" {
			continue
		}
		if st.FieldByName(a.name) == nil {
			return throw(env, tok, serrors.KindArg,
				"%s has no field %q", st.Name, a.name)
		}
		if _, dup := provided[a.name]; dup {
			return throw(env, tok, serrors.KindArg,
				"%s got multiple values for field %q", st.Name, a.name)
		}
		provided[a.name] = a.value
	}

	// Resolve every field before building the instance
	resolved := make([]Object, len(st.Fields))
	for i, f := range st.Fields {
		val, ok := provided[f.Name]
		switch {
		case ok:
			if f.Optional && val == NULL {
				break
			}
			if ex := checkAnnotation(val, f.Annotation, st.Name, f.Name, tok, env); ex != nil {
				return ex
			}
		case f.HasDefault:
			val = deepCopy(f.Default)
		case f.Optional:
			val = NULL
		default:
			return throw(env, tok, serrors.KindArg,
				"%s missing required field %q", st.Name, f.Name)
		}
		resolved[i] = val
	}

	fields := orderedmap.New()
	for i, f := range st.Fields {
		fields.Set(f.Name, resolved[i])
	}
	return &StructInstance{TypeDesc: st, Fields: fields}
}
