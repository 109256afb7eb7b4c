package lowering

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

// scottBranchParam names the i-th constructor-selector parameter of a
// Scott-encoded value: λf0 … f_{n-1}. f_tag a1 … ak.
func scottBranchParam(i int) string { return fmt.Sprintf("$f%d", i) }

// lowerScottConstr builds the Scott encoding of a value of the tag-th
// constructor of decl, already-lowered args in hand (spec §4.1 "Scott
// encoding (versions V1-V3)").
func lowerScottConstr(decl *sir.DataDecl, tag int, args []uplc.Term) uplc.Term {
	n := len(decl.Constructors)
	var app uplc.Term = uplc.Var{Name: scottBranchParam(tag)}
	for _, a := range args {
		app = uplc.Apply{Fun: app, Arg: a}
	}
	term := app
	for i := n - 1; i >= 0; i-- {
		term = uplc.LamAbs{Name: scottBranchParam(i), Body: term}
	}
	return term
}

func lowerConstr(ctx *Context, opts Options, node sir.Constr) (uplc.Term, error) {
	if node.Decl == nil {
		return nil, errf(Pos{}, "constructor %q has no declaration attached", node.Name)
	}
	tag := node.Decl.IndexOf(node.Name)
	if tag < 0 {
		return nil, errf(Pos{}, "unknown constructor %q of %q", node.Name, node.Decl.Name)
	}
	args := make([]uplc.Term, len(node.Args))
	for i, a := range node.Args {
		t, err := lowerNode(ctx, opts, a)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	if opts.TargetVersion.SupportsNativeCase() {
		return uplc.Constr{Tag: uint64(tag), Args: args}, nil
	}
	return lowerScottConstr(node.Decl, tag, args), nil
}

var dataFieldBuiltins = map[string]uplc.BuiltinId{
	"int":   uplc.UnIData,
	"bytes": uplc.UnBData,
	"list":  uplc.UnListData,
	"map":   uplc.UnMapData,
}

func lowerSelect(ctx *Context, opts Options, node sir.Select) (uplc.Term, error) {
	scrutinee, err := lowerNode(ctx, opts, node.Scrutinee)
	if err != nil {
		return nil, err
	}

	if node.Type == "Data" {
		id, ok := dataFieldBuiltins[node.Field]
		if !ok {
			return nil, errf(Pos{}, "select: unsupported Data field %q (want one of int, bytes, list, map)", node.Field)
		}
		return uplc.Apply{Fun: uplc.Builtin{Id: id}, Arg: scrutinee}, nil
	}

	decl, ok := ctx.LookupDecl(node.Type)
	if !ok {
		return nil, errf(Pos{}, "select: unknown declaration %q", node.Type)
	}
	if len(decl.Constructors) != 1 {
		return nil, errf(Pos{}, "select: %q is not a single-constructor type", node.Type)
	}
	ctor := decl.Constructors[0]
	fieldIdx := -1
	for i, fn := range ctor.Fields {
		if fn == node.Field {
			fieldIdx = i
		}
	}
	if fieldIdx < 0 {
		return nil, errf(Pos{}, "select: %q has no field %q", node.Type, node.Field)
	}

	branch := buildBranchFunc(ctor.Fields, uplc.Var{Name: ctor.Fields[fieldIdx]})
	if opts.TargetVersion.SupportsNativeCase() {
		return uplc.Case{Scrutinee: scrutinee, Branches: []uplc.Term{branch}}, nil
	}
	return uplc.Apply{Fun: scrutinee, Arg: branch}, nil
}
