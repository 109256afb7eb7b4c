// Package sirjson decodes a JSON-encoded sir.Node tree, the input format
// cmd/scalus's lower and eval subcommands read. internal/sir deliberately
// has no dependency on internal/uplc (its own Const.Value is the narrow
// ConstantLike interface, not uplc.Constant directly); this package is
// where the two meet, following the same map[string]json.RawMessage
// discriminator idiom cryptobuks-chain's ivy/compile.go uses for its own
// polymorphic ContractArg.UnmarshalJSON.
//
// This is not a SIR surface-syntax front end: it parses a direct JSON
// serialization of the existing node tree, not human-authored contract
// source, so it does not reopen the front-end non-goal.
package sirjson

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/uplc"
)

// DecodeNode parses one JSON-encoded sir.Node. Every object must carry a
// "kind" field naming the constructor: the Go node type's name in lower
// camel case (e.g. "lamAbs", "ifThenElse", "const").
func DecodeNode(raw json.RawMessage) (sir.Node, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("sirjson: reading node kind: %w", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sirjson: reading node fields: %w", err)
	}

	switch head.Kind {
	case "var":
		return sir.Var{Name: stringField(m, "name")}, nil
	case "externalVar":
		return sir.ExternalVar{Module: stringField(m, "module"), Name: stringField(m, "name")}, nil
	case "lamAbs":
		body, err := nodeField(m, "body")
		if err != nil {
			return nil, err
		}
		return sir.LamAbs{Name: stringField(m, "name"), Body: body, TypeParams: stringSliceField(m, "typeParams")}, nil
	case "apply":
		fun, err := nodeField(m, "fun")
		if err != nil {
			return nil, err
		}
		arg, err := nodeField(m, "arg")
		if err != nil {
			return nil, err
		}
		return sir.Apply{Fun: fun, Arg: arg}, nil
	case "let":
		bindings, err := bindingsField(m, "bindings")
		if err != nil {
			return nil, err
		}
		body, err := nodeField(m, "body")
		if err != nil {
			return nil, err
		}
		return sir.Let{Bindings: bindings, Body: body, Recursive: boolField(m, "recursive")}, nil
	case "match":
		scrutinee, err := nodeField(m, "scrutinee")
		if err != nil {
			return nil, err
		}
		cases, err := casesField(m, "cases")
		if err != nil {
			return nil, err
		}
		return sir.Match{Scrutinee: scrutinee, Cases: cases, Unchecked: boolField(m, "unchecked")}, nil
	case "constr":
		args, err := nodeSliceField(m, "args")
		if err != nil {
			return nil, err
		}
		decl, err := dataDeclField(m, "decl")
		if err != nil {
			return nil, err
		}
		return sir.Constr{Name: stringField(m, "name"), Decl: decl, Args: args}, nil
	case "select":
		scrutinee, err := nodeField(m, "scrutinee")
		if err != nil {
			return nil, err
		}
		return sir.Select{Scrutinee: scrutinee, Field: stringField(m, "field"), Type: stringField(m, "type")}, nil
	case "ifThenElse":
		cond, err := nodeField(m, "cond")
		if err != nil {
			return nil, err
		}
		then, err := nodeField(m, "then")
		if err != nil {
			return nil, err
		}
		els, err := nodeField(m, "else")
		if err != nil {
			return nil, err
		}
		return sir.IfThenElse{Cond: cond, Then: then, Else: els}, nil
	case "and":
		left, right, err := binaryFields(m)
		if err != nil {
			return nil, err
		}
		return sir.And{Left: left, Right: right}, nil
	case "or":
		left, right, err := binaryFields(m)
		if err != nil {
			return nil, err
		}
		return sir.Or{Left: left, Right: right}, nil
	case "not":
		operand, err := nodeField(m, "operand")
		if err != nil {
			return nil, err
		}
		return sir.Not{Operand: operand}, nil
	case "cast":
		operand, err := nodeField(m, "operand")
		if err != nil {
			return nil, err
		}
		return sir.Cast{Operand: operand, Type: stringField(m, "type")}, nil
	case "const":
		c, err := constantField(m, "value")
		if err != nil {
			return nil, err
		}
		return sir.Const{Value: c}, nil
	case "builtin":
		return sir.Builtin{Name: stringField(m, "name")}, nil
	case "error":
		return sir.Error{Message: stringField(m, "message")}, nil
	case "decl":
		decl, err := dataDeclField(m, "decl")
		if err != nil {
			return nil, err
		}
		body, err := nodeField(m, "body")
		if err != nil {
			return nil, err
		}
		return sir.Decl{Decl: decl, Body: body}, nil
	default:
		return nil, fmt.Errorf("sirjson: unknown node kind %q", head.Kind)
	}
}

func binaryFields(m map[string]json.RawMessage) (sir.Node, sir.Node, error) {
	left, err := nodeField(m, "left")
	if err != nil {
		return nil, nil, err
	}
	right, err := nodeField(m, "right")
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func boolField(m map[string]json.RawMessage, key string) bool {
	raw, ok := m[key]
	if !ok {
		return false
	}
	var b bool
	_ = json.Unmarshal(raw, &b)
	return b
}

func stringSliceField(m map[string]json.RawMessage, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	var ss []string
	_ = json.Unmarshal(raw, &ss)
	return ss
}

func nodeField(m map[string]json.RawMessage, key string) (sir.Node, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("sirjson: missing field %q", key)
	}
	return DecodeNode(raw)
}

func nodeSliceField(m map[string]json.RawMessage, key string) ([]sir.Node, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, fmt.Errorf("sirjson: reading %q: %w", key, err)
	}
	nodes := make([]sir.Node, len(rawItems))
	for i, item := range rawItems {
		n, err := DecodeNode(item)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func bindingsField(m map[string]json.RawMessage, key string) ([]sir.Binding, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	var rawItems []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, fmt.Errorf("sirjson: reading %q: %w", key, err)
	}
	bindings := make([]sir.Binding, len(rawItems))
	for i, item := range rawItems {
		v, err := DecodeNode(item.Value)
		if err != nil {
			return nil, err
		}
		bindings[i] = sir.Binding{Name: item.Name, Value: v}
	}
	return bindings, nil
}

func casesField(m map[string]json.RawMessage, key string) ([]sir.MatchCase, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	var rawItems []struct {
		Constructor string          `json:"constructor"`
		Bindings    []string        `json:"bindings"`
		Constant    json.RawMessage `json:"constant"`
		Wildcard    bool            `json:"wildcard"`
		Body        json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, fmt.Errorf("sirjson: reading %q: %w", key, err)
	}
	cases := make([]sir.MatchCase, len(rawItems))
	for i, item := range rawItems {
		body, err := DecodeNode(item.Body)
		if err != nil {
			return nil, err
		}
		var constant sir.Node
		if len(item.Constant) > 0 {
			constant, err = DecodeNode(item.Constant)
			if err != nil {
				return nil, err
			}
		}
		cases[i] = sir.MatchCase{
			Constructor: item.Constructor,
			Bindings:    item.Bindings,
			Constant:    constant,
			Wildcard:    item.Wildcard,
			Body:        body,
		}
	}
	return cases, nil
}

func dataDeclField(m map[string]json.RawMessage, key string) (*sir.DataDecl, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("sirjson: missing field %q", key)
	}
	var decoded struct {
		Name         string `json:"name"`
		Constructors []struct {
			Name   string   `json:"name"`
			Fields []string `json:"fields"`
		} `json:"constructors"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("sirjson: reading %q: %w", key, err)
	}
	decl := &sir.DataDecl{Name: decoded.Name}
	for _, c := range decoded.Constructors {
		decl.Constructors = append(decl.Constructors, sir.ConstructorDecl{Name: c.Name, Fields: c.Fields})
	}
	return decl, nil
}

// constantField decodes a uplc.Constant, tagged the same way DecodeNode
// tags a sir.Node: {"type": "...", ...fields}.
func constantField(m map[string]json.RawMessage, key string) (uplc.Constant, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("sirjson: missing field %q", key)
	}
	return DecodeConstant(raw)
}

// DecodeConstant parses one JSON-encoded uplc.Constant.
func DecodeConstant(raw json.RawMessage) (uplc.Constant, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("sirjson: reading constant type: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sirjson: reading constant fields: %w", err)
	}

	switch head.Type {
	case "integer":
		s := stringField(m, "value")
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("sirjson: invalid integer literal %q", s)
		}
		return uplc.ConstInteger{Value: v}, nil
	case "bytestring":
		var bs []byte
		if raw, ok := m["value"]; ok {
			if err := json.Unmarshal(raw, &bs); err != nil {
				return nil, fmt.Errorf("sirjson: reading bytestring: %w", err)
			}
		}
		return uplc.ConstByteString{Value: bs}, nil
	case "string":
		return uplc.ConstString{Value: stringField(m, "value")}, nil
	case "unit":
		return uplc.ConstUnit{}, nil
	case "bool":
		return uplc.ConstBool{Value: boolField(m, "value")}, nil
	case "list":
		elemRaw, ok := m["elemType"]
		if !ok {
			return nil, fmt.Errorf("sirjson: list constant missing elemType")
		}
		var elemTypeName string
		if err := json.Unmarshal(elemRaw, &elemTypeName); err != nil {
			return nil, fmt.Errorf("sirjson: reading elemType: %w", err)
		}
		elemType, err := constTypeByName(elemTypeName)
		if err != nil {
			return nil, err
		}
		elemsRaw, ok := m["elems"]
		var rawItems []json.RawMessage
		if ok {
			if err := json.Unmarshal(elemsRaw, &rawItems); err != nil {
				return nil, fmt.Errorf("sirjson: reading elems: %w", err)
			}
		}
		elems := make([]uplc.Constant, len(rawItems))
		for i, item := range rawItems {
			elems[i], err = DecodeConstant(item)
			if err != nil {
				return nil, err
			}
		}
		return uplc.ConstList{ElemType: elemType, Elems: elems}, nil
	case "pair":
		firstRaw, ok := m["first"]
		if !ok {
			return nil, fmt.Errorf("sirjson: pair constant missing first")
		}
		secondRaw, ok := m["second"]
		if !ok {
			return nil, fmt.Errorf("sirjson: pair constant missing second")
		}
		first, err := DecodeConstant(firstRaw)
		if err != nil {
			return nil, err
		}
		second, err := DecodeConstant(secondRaw)
		if err != nil {
			return nil, err
		}
		return uplc.ConstPair{First: first, Second: second}, nil
	default:
		return nil, fmt.Errorf("sirjson: unsupported constant type %q (data/BLS constants are not accepted from the CLI)", head.Type)
	}
}

func constTypeByName(name string) (uplc.ConstType, error) {
	for t := uplc.TInteger; t <= uplc.TBLSMlResult; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("sirjson: unknown constant element type %q", name)
}
