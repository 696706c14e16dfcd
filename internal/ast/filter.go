package ast

import (
	"strconv"
	"strings"

	"github.com/jppquery/jsonpath/value"
)

// FilterExpr represents a filter expression tree (?logical-expr) per RFC 9535 §2.3.5.
type FilterExpr struct {
	Or LogicalOr
}

// Eval evaluates the filter expression against the current node.
func (f *FilterExpr) Eval(current, root value.Value) bool {
	return f.Or.Eval(current, root)
}

// writeTo writes the canonical string representation of f to buf.
func (f *FilterExpr) writeTo(buf *strings.Builder) {
	f.Or.writeTo(buf)
}

// LogicalOr is a sequence of LogicalAnd expressions joined by ||.
// Short-circuits on first true.
type LogicalOr []LogicalAnd

// Eval returns true if any LogicalAnd expression is true.
func (lo LogicalOr) Eval(current, root value.Value) bool {
	for i := range lo {
		if lo[i].Eval(current, root) {
			return true
		}
	}
	return false
}

func (lo LogicalOr) writeTo(buf *strings.Builder) {
	for i := range lo {
		if i > 0 {
			buf.WriteString(" || ")
		}
		lo[i].writeTo(buf)
	}
}

// LogicalAnd is a sequence of BasicExpr joined by &&.
// Short-circuits on first false.
type LogicalAnd []BasicExpr

// Eval returns true if all BasicExpr are true.
func (la LogicalAnd) Eval(current, root value.Value) bool {
	for i := range la {
		if !la[i].Eval(current, root) {
			return false
		}
	}
	return true
}

func (la LogicalAnd) writeTo(buf *strings.Builder) {
	for i := range la {
		if i > 0 {
			buf.WriteString(" && ")
		}
		la[i].writeTo(buf)
	}
}

// BasicExpr is a filter expression that evaluates to a boolean.
type BasicExpr interface {
	Eval(current, root value.Value) bool
	writeTo(buf *strings.Builder)
}

// ExistExpr tests if a query selects at least one node.
type ExistExpr struct {
	Query *PathQuery
}

// Eval returns true if the query selects at least one node.
func (e *ExistExpr) Eval(current, root value.Value) bool {
	if len(e.Query.Segments()) == 0 {
		return true // bare @ or $ always exists
	}
	nodes := e.Query.Select(current, root)
	return len(nodes) > 0
}

func (e *ExistExpr) writeTo(buf *strings.Builder) { buf.WriteString(e.Query.String()) }

// NonExistExpr tests if a query selects no nodes.
type NonExistExpr struct {
	Query *PathQuery
}

// Eval returns true if the query selects no nodes.
func (e *NonExistExpr) Eval(current, root value.Value) bool {
	if len(e.Query.Segments()) == 0 {
		return false
	}
	nodes := e.Query.Select(current, root)
	return len(nodes) == 0
}

func (e *NonExistExpr) writeTo(buf *strings.Builder) {
	buf.WriteByte('!')
	buf.WriteString(e.Query.String())
}

// ParenExpr is a parenthesized logical expression.
type ParenExpr struct {
	Expr *LogicalOr
}

// Eval evaluates the parenthesized expression.
func (p *ParenExpr) Eval(current, root value.Value) bool {
	return p.Expr.Eval(current, root)
}

func (p *ParenExpr) writeTo(buf *strings.Builder) {
	buf.WriteByte('(')
	p.Expr.writeTo(buf)
	buf.WriteByte(')')
}

// NotParenExpr is a negated parenthesized logical expression.
type NotParenExpr struct {
	Expr *LogicalOr
}

// Eval evaluates the negated parenthesized expression.
func (n *NotParenExpr) Eval(current, root value.Value) bool {
	return !n.Expr.Eval(current, root)
}

func (n *NotParenExpr) writeTo(buf *strings.Builder) {
	buf.WriteString("!(")
	n.Expr.writeTo(buf)
	buf.WriteByte(')')
}

// NegFuncExpr is a negated logical function call expression (!match(), !search()).
type NegFuncExpr struct {
	Func *FuncExpr
}

// Eval evaluates the negated function call.
func (n *NegFuncExpr) Eval(current, root value.Value) bool {
	return !n.Func.Eval(current, root)
}

func (n *NegFuncExpr) writeTo(buf *strings.Builder) {
	buf.WriteByte('!')
	n.Func.writeTo(buf)
}

// CompOp is a comparison operator.
type CompOp uint8

const (
	Equal        CompOp = iota // ==
	NotEqual                   // !=
	Less                       // <
	LessEqual                  // <=
	Greater                    // >
	GreaterEqual               // >=
)

// String returns the operator as it appears in a query.
func (op CompOp) String() string {
	switch op {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return "??"
	}
}

// CompExpr is a comparison expression.
type CompExpr struct {
	Left  CompValue
	Op    CompOp
	Right CompValue
}

// Eval evaluates the comparison expression. Per RFC 9535 §2.3.5.2.2, each
// side is reduced to at most one scalar value (a query yielding more than
// one node, or none, is treated as absent) before the operator is applied.
func (c *CompExpr) Eval(current, root value.Value) bool {
	left := c.Left.Value(current, root)
	right := c.Right.Value(current, root)
	return compare(left, right, c.Op)
}

func (c *CompExpr) writeTo(buf *strings.Builder) {
	c.Left.writeTo(buf)
	buf.WriteByte(' ')
	buf.WriteString(c.Op.String())
	buf.WriteByte(' ')
	c.Right.writeTo(buf)
}

// CompValue represents a comparable value in a comparison expression. It
// produces an [exprResult] rather than a bare value so that [CompExpr.Eval]
// can apply RFC 9535's NodesType-reduction rules uniformly regardless of
// whether the operand came from a literal, a query, or a function call.
type CompValue interface {
	Value(current, root value.Value) exprResult
	writeTo(buf *strings.Builder)
}

// exprResult is the natural encoding of a filter sub-expression's runtime
// result: a list of nodes (from a query), a single JSON value (from a
// literal or value-returning function), or Nothing (the absence of a
// value, distinct from JSON null).
type exprResult struct {
	kind  exprKind
	nodes []value.Value
	val   value.Value
}

type exprKind uint8

const (
	resNodes exprKind = iota
	resValue
	resNothing
)

func nodesResult(nodes []value.Value) exprResult { return exprResult{kind: resNodes, nodes: nodes} }
func valueResult(v value.Value) exprResult        { return exprResult{kind: resValue, val: v} }
func nothingResult() exprResult                   { return exprResult{kind: resNothing} }

// scalarOf reduces r to a single comparable value per RFC 9535 §2.3.5.2.2:
// a NodesType result compares as its single node when it has exactly one,
// and as absent otherwise; a ValueType result compares as itself; Nothing
// is always absent.
func scalarOf(r exprResult) (value.Value, bool) {
	switch r.kind {
	case resNodes:
		if len(r.nodes) == 1 {
			return r.nodes[0], true
		}
		return value.Value{}, false
	case resValue:
		return r.val, true
	default:
		return value.Value{}, false
	}
}

// compare applies op to left and right, both already reduced into
// [exprResult]s, per the absent/present rules of RFC 9535 §2.3.5.2.2.
func compare(left, right exprResult, op CompOp) bool {
	lv, lok := scalarOf(left)
	rv, rok := scalarOf(right)

	switch op {
	case Equal:
		if !lok && !rok {
			return true
		}
		if lok != rok {
			return false
		}
		return value.Equal(lv, rv)
	case NotEqual:
		return !compare(left, right, Equal)
	case Less:
		if !lok || !rok {
			return false
		}
		return value.SameType(lv, rv) && value.Less(lv, rv)
	case LessEqual:
		return compare(left, right, Less) || compare(left, right, Equal)
	case Greater:
		// a > b holds iff b < a, keeping ordering confined to the types
		// that [value.Less] orders (numbers and strings).
		if !lok || !rok {
			return false
		}
		return value.SameType(lv, rv) && value.Less(rv, lv)
	case GreaterEqual:
		return compare(left, right, Greater) || compare(left, right, Equal)
	default:
		return false
	}
}

// LiteralValue is a literal value (string, number, bool, or null).
type LiteralValue struct {
	Val value.Value
}

// Value returns the literal value.
func (l *LiteralValue) Value(current, root value.Value) exprResult {
	return valueResult(l.Val)
}

func (l *LiteralValue) writeTo(buf *strings.Builder) {
	writeLiteralTo(buf, l.Val)
}

// writeLiteralTo renders v the way it is written in a query. Only scalar
// literals can appear in a filter expression, so arrays and objects never
// reach here from a parsed query.
func writeLiteralTo(buf *strings.Builder, v value.Value) {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case value.KindNumber:
		n, _ := v.AsFloat64()
		buf.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	case value.KindString:
		s, _ := v.AsString()
		buf.WriteString(strconv.Quote(s))
	default:
		buf.WriteString("null")
	}
}

// QueryValue is a query used as a comparison operand. Its result is left
// as a NodesType result (not collapsed early) so [compare] can apply the
// "more than one node compares as absent" rule uniformly.
type QueryValue struct {
	Query *PathQuery
}

// Value returns the query's unreduced node-list result.
func (q *QueryValue) Value(current, root value.Value) exprResult {
	return nodesResult(q.Query.Select(current, root))
}

func (q *QueryValue) writeTo(buf *strings.Builder) {
	q.Query.writeTo(buf)
}

// FuncValue is a function call used as a comparison operand.
type FuncValue struct {
	Func *FuncExpr
}

// Value returns the result of the function call.
func (f *FuncValue) Value(current, root value.Value) exprResult {
	res := f.Func.Call(current, root)
	switch v := res.(type) {
	case nil:
		return nothingResult()
	case value.Value:
		return valueResult(v)
	case bool:
		return valueResult(value.Bool(v))
	case []value.Value:
		return nodesResult(v)
	default:
		return nothingResult()
	}
}

func (f *FuncValue) writeTo(buf *strings.Builder) {
	f.Func.writeTo(buf)
}
