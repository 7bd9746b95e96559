// Package filter provides AIP-160 filter expression parsing for document
// queries, in-memory evaluation and SQL translation.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// listFields are the declared fields holding arrays of IDs.
var listFields = []string{"members"}

// Declarations returns the field declarations for document filtering.
func Declarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("owner", filtering.TypeString),
		filtering.DeclareIdent("members", filtering.TypeList(filtering.TypeString)),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("email", filtering.TypeString),
		filtering.DeclareIdent("username", filtering.TypeString),
		filtering.DeclareIdent("isVerified", filtering.TypeBool),
		filtering.DeclareIdent("groupId", filtering.TypeString),
		filtering.DeclareIdent("invitee", filtering.TypeString),
		filtering.DeclareIdent("inviter", filtering.TypeString),
		filtering.DeclareIdent("userId", filtering.TypeString),
		filtering.DeclareIdent("title", filtering.TypeString),
	)
}

var declarations = sync.OnceValues(Declarations)

// Filter is a parsed filter expression. The zero Filter matches every document.
type Filter struct {
	root *node
}

type node struct {
	function string // AND, OR, NOT, =, != or :
	args     []*node
	field    string
	value    any // string, bool, int64 or float64
}

// Parse parses and type-checks an AIP-160 filter expression.
// An empty string yields the zero Filter.
func Parse(s string) (Filter, error) {
	if strings.TrimSpace(s) == "" {
		return Filter{}, nil
	}

	decls, err := declarations()
	if err != nil {
		return Filter{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(s, decls)
	if err != nil {
		return Filter{}, fmt.Errorf("parse filter: %w", err)
	}

	root, err := translateExpr(parsed.CheckedExpr.GetExpr())
	if err != nil {
		return Filter{}, err
	}
	return Filter{root: root}, nil
}

// Empty reports whether f matches every document.
func (f Filter) Empty() bool {
	return f.root == nil
}

func translateExpr(e *expr.Expr) (*node, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (*node, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateLogical("AND", call.Args, 2)
	case "_||_", "OR":
		return translateLogical("OR", call.Args, 2)
	case "NOT":
		return translateLogical("NOT", call.Args, 1)
	case "_==_", "=":
		return translateComparison("=", call.Args)
	case "_!=_", "!=":
		return translateComparison("!=", call.Args)
	case ":":
		return translateHas(call.Args)
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateLogical(function string, args []*expr.Expr, minArgs int) (*node, error) {
	if len(args) < minArgs || (function == "NOT" && len(args) != 1) {
		return nil, fmt.Errorf("%s requires %d arguments", function, minArgs)
	}
	n := &node{function: function}
	for _, arg := range args {
		sub, err := translateExpr(arg)
		if err != nil {
			return nil, err
		}
		n.args = append(n.args, sub)
	}
	return n, nil
}

func translateComparison(function string, args []*expr.Expr) (*node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	if slices.Contains(listFields, field) {
		return nil, fmt.Errorf("field %s is a list; use %s:value", field, field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}
	return &node{function: function, field: field, value: value}, nil
}

func translateHas(args []*expr.Expr) (*node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	if !slices.Contains(listFields, field) {
		return nil, fmt.Errorf("has is only supported on list fields, got %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("has requires a string value")
	}
	return &node{function: ":", field: field, value: s}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// Match evaluates f against a decoded JSON document.
func (f Filter) Match(doc map[string]any) bool {
	if f.root == nil {
		return true
	}
	return f.root.match(doc)
}

func (n *node) match(doc map[string]any) bool {
	switch n.function {
	case "AND":
		for _, sub := range n.args {
			if !sub.match(doc) {
				return false
			}
		}
		return true
	case "OR":
		for _, sub := range n.args {
			if sub.match(doc) {
				return true
			}
		}
		return false
	case "NOT":
		return !n.args[0].match(doc)
	case "=":
		return equal(doc[n.field], n.value)
	case "!=":
		return !equal(doc[n.field], n.value)
	case ":":
		arr, ok := doc[n.field].([]any)
		if !ok {
			return false
		}
		for _, v := range arr {
			if s, ok := v.(string); ok && s == n.value {
				return true
			}
		}
	}
	return false
}

// equal compares a JSON value with a filter constant. JSON numbers decode
// as float64.
func equal(got, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := got.(string)
		return ok && s == w
	case bool:
		b, ok := got.(bool)
		return ok && b == w
	case int64:
		f, ok := got.(float64)
		return ok && f == float64(w)
	case float64:
		f, ok := got.(float64)
		return ok && f == w
	}
	return false
}

// Dialect renders field predicates for one SQL backend. Field names reaching
// a Dialect are always declared identifiers.
type Dialect struct {
	// Placeholder returns the marker of the n-th query parameter, counting from 1.
	Placeholder func(n int) string
	// Equal, NotEqual and Has compare field with the parameter marker ph.
	// NotEqual must hold for documents missing the field; Has must only hold
	// for arrays.
	Equal    func(field, ph string) string
	NotEqual func(field, ph string) string
	Has      func(field, ph string) string
	// Param converts a constant into a driver parameter. Nil passes values through.
	Param func(v any) any
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL condition; empty for the zero Filter.
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// SQL translates f into a condition. offset is the number of parameters the
// surrounding statement already uses.
func (f Filter) SQL(d Dialect, offset int) SQLCondition {
	if f.root == nil {
		return SQLCondition{}
	}
	t := &sqlTranslator{d: d, offset: offset}
	clause := t.translate(f.root)
	return SQLCondition{Clause: clause, Params: t.params}
}

type sqlTranslator struct {
	d      Dialect
	offset int
	params []any
}

func (t *sqlTranslator) param(v any) string {
	if t.d.Param != nil {
		v = t.d.Param(v)
	}
	t.params = append(t.params, v)
	return t.d.Placeholder(t.offset + len(t.params))
}

func (t *sqlTranslator) translate(n *node) string {
	switch n.function {
	case "AND", "OR":
		parts := make([]string, 0, len(n.args))
		for _, sub := range n.args {
			parts = append(parts, t.translate(sub))
		}
		return "(" + strings.Join(parts, " "+n.function+" ") + ")"
	case "NOT":
		return "(NOT " + t.translate(n.args[0]) + ")"
	case "=":
		return t.d.Equal(n.field, t.param(n.value))
	case "!=":
		return t.d.NotEqual(n.field, t.param(n.value))
	case ":":
		return t.d.Has(n.field, t.param(n.value))
	}
	return "FALSE"
}

// Quote renders s as a filter string literal.
func Quote(s string) string {
	return strconv.Quote(s)
}

// Eq returns the expression field = value.
func Eq(field, value string) string {
	return field + " = " + Quote(value)
}

// Neq returns the expression field != value.
func Neq(field, value string) string {
	return field + " != " + Quote(value)
}

// Has returns the expression matching list fields containing value.
func Has(field, value string) string {
	return field + ":" + Quote(value)
}

// And joins expressions with AND.
func And(exprs ...string) string {
	return join("AND", exprs)
}

// Or joins expressions with OR.
func Or(exprs ...string) string {
	return join("OR", exprs)
}

func join(op string, exprs []string) string {
	switch len(exprs) {
	case 0:
		return ""
	case 1:
		return exprs[0]
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = "(" + e + ")"
	}
	return strings.Join(parts, " "+op+" ")
}
