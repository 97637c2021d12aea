package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Source.
func (s *Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// MarshalYAML implements yaml.InterfaceMarshaler for Source.
func (s *Source) MarshalYAML() (any, error) {
	return s.ToMap(), nil
}

// ToMap converts the tree to nested maps. Every node carries a "node" key
// naming its kind; expressions carry a "type" key once analyzed.
func (s *Source) ToMap() map[string]any {
	fields := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.ToMap()
	}

	methods := make([]any, len(s.Methods))
	for i, m := range s.Methods {
		methods[i] = m.ToMap()
	}

	return map[string]any{
		"node":    "source",
		"fields":  fields,
		"methods": methods,
	}
}

// ToMap converts the field to nested maps.
func (f *Field) ToMap() map[string]any {
	m := map[string]any{
		"node": "field",
		"name": f.Name,
		"type": f.TypeName,
	}

	if f.Value != nil {
		m["value"] = ExprToMap(f.Value)
	}

	return m
}

// ToMap converts the method to nested maps.
func (m *Method) ToMap() map[string]any {
	params := make([]any, len(m.Params))
	for i, name := range m.Params {
		params[i] = map[string]any{"name": name, "type": m.ParamTypes[i]}
	}

	out := map[string]any{
		"node":       "method",
		"name":       m.Name,
		"parameters": params,
		"body":       stmtsToNative(m.Body),
	}

	if m.ReturnType != "" {
		out["returns"] = m.ReturnType
	}

	return out
}

func stmtsToNative(body []Stmt) []any {
	out := make([]any, len(body))
	for i, s := range body {
		out[i] = StmtToMap(s)
	}

	return out
}

// StmtToMap converts a statement to nested maps.
func StmtToMap(s Stmt) map[string]any {
	switch s := s.(type) {
	case *ExprStmt:
		return map[string]any{"node": "expression", "expression": ExprToMap(s.Expr)}

	case *Declaration:
		m := map[string]any{"node": "declaration", "name": s.Name}

		if s.TypeName != "" {
			m["declared"] = s.TypeName
		}

		if s.Variable != nil {
			m["type"] = s.Variable.Type.String()
		}

		if s.Value != nil {
			m["value"] = ExprToMap(s.Value)
		}

		return m

	case *Assignment:
		return map[string]any{
			"node":     "assignment",
			"receiver": ExprToMap(s.Receiver),
			"value":    ExprToMap(s.Value),
		}

	case *If:
		return map[string]any{
			"node":      "if",
			"condition": ExprToMap(s.Cond),
			"then":      stmtsToNative(s.Then),
			"else":      stmtsToNative(s.Else),
		}

	case *For:
		return map[string]any{
			"node":     "for",
			"name":     s.Name,
			"iterable": ExprToMap(s.Iterable),
			"body":     stmtsToNative(s.Body),
		}

	case *While:
		return map[string]any{
			"node":      "while",
			"condition": ExprToMap(s.Cond),
			"body":      stmtsToNative(s.Body),
		}

	case *Return:
		return map[string]any{"node": "return", "value": ExprToMap(s.Value)}

	default:
		return map[string]any{"node": "unknown"}
	}
}

// ExprToMap converts an expression to nested maps.
func ExprToMap(e Expr) map[string]any {
	var m map[string]any

	switch e := e.(type) {
	case *Literal:
		m = map[string]any{"node": "literal", "value": literalToNative(e.Value)}

	case *Group:
		m = map[string]any{"node": "group", "expression": ExprToMap(e.Inner)}

	case *Binary:
		m = map[string]any{
			"node":     "binary",
			"operator": e.Op,
			"left":     ExprToMap(e.Left),
			"right":    ExprToMap(e.Right),
		}

	case *Access:
		m = map[string]any{"node": "access", "name": e.Name}

		if e.Receiver != nil {
			m["receiver"] = ExprToMap(e.Receiver)
		}

	case *Call:
		args := make([]any, len(e.Args))
		for i, arg := range e.Args {
			args[i] = ExprToMap(arg)
		}

		m = map[string]any{"node": "call", "name": e.Name, "arguments": args}

		if e.Receiver != nil {
			m["receiver"] = ExprToMap(e.Receiver)
		}

	default:
		return map[string]any{"node": "unknown"}
	}

	if t := e.Type(); t != nil {
		m["type"] = t.Name
	}

	return m
}

// literalToNative keeps numbers exact by rendering them as text.
func literalToNative(v Value) any {
	switch v := v.(type) {
	case Nil, nil:
		return nil
	case Bool:
		return bool(v)
	case Str:
		return string(v)
	default:
		return v.String()
	}
}
