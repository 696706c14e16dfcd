package jsonpath

import (
	"errors"
	"fmt"

	"github.com/jppquery/jsonpath/functions"
	"github.com/jppquery/jsonpath/internal/ast"
	"github.com/jppquery/jsonpath/internal/parser"
)

// FuncType describes the type of a function extension's return value as
// defined by RFC 9535 §2.4.1.
type FuncType = ast.FuncType

const (
	// FuncLogical indicates the function returns a logical (bool) value.
	FuncLogical = ast.Logical
	// FuncValue indicates the function returns a single JSON value.
	FuncValue = ast.Value
	// FuncNodes indicates the function returns a node list.
	FuncNodes = ast.Nodes
)

// ArgType describes the type of a function argument expression for
// parse-time validation.
type ArgType = ast.ArgType

const (
	// ArgLiteral is a literal JSON value argument.
	ArgLiteral = ast.Literal
	// ArgSingularQuery is a singular query argument (e.g. @.name or $.name).
	ArgSingularQuery = ast.QueryArg
	// ArgFilterQuery is a filter query argument producing a node list.
	ArgFilterQuery = ast.FilterArg
	// ArgLogicalExpr is a logical expression argument.
	ArgLogicalExpr = ast.LogicalArg
	// ArgFunctionExpr is a nested function call argument.
	ArgFunctionExpr = ast.FunctionArg
)

// Function defines an extension function that can be registered with a
// [Parser] via [WithFunctions]. Implementations must be safe for concurrent
// use if the [Parser] is used concurrently. Function is an alias of the
// internal evaluator's function interface, so a registered extension is
// indistinguishable from a built-in once parsed.
type Function = ast.Function

// Option configures a [Parser].
type Option func(*parserOptions)

// parserOptions holds configuration for a [Parser].
type parserOptions struct {
	functions map[string]Function
}

// WithFunctions registers additional filter functions beyond the RFC 9535
// built-ins. If multiple functions share the same name, the last one wins.
func WithFunctions(fns ...Function) Option {
	return func(o *parserOptions) {
		for _, fn := range fns {
			o.functions[fn.Name()] = fn
		}
	}
}

// Parser parses JSONPath expressions into [Path] values, optionally
// configured with extension functions.
type Parser struct {
	opts parserOptions
}

// NewParser creates a new [Parser] configured by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		opts: parserOptions{
			functions: make(map[string]Function),
		},
	}
	for _, o := range opts {
		o(&p.opts)
	}
	return p
}

// Parse compiles a JSONPath expression. Returns [ErrPathParse] on failure.
func (p *Parser) Parse(expr string) (*Path, error) {
	funcs := make(map[string]any, 5+len(p.opts.functions))
	for _, fn := range functions.Builtins() {
		funcs[fn.Name()] = fn
	}
	for name, fn := range p.opts.functions {
		funcs[name] = fn
	}

	internalParser, err := parser.New(expr, funcs)
	if err != nil {
		return nil, newParseError(expr, err)
	}

	query, err := internalParser.Parse()
	if err != nil {
		return nil, newParseError(expr, err)
	}

	return &Path{query: query}, nil
}

// newParseError wraps an internal parse failure into a [ParseError],
// extracting the byte offset when the parser reported one. An
// end-of-input failure is anchored at the end of the expression.
func newParseError(expr string, err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrPathParse, err)
	offset := len(expr)
	var perr *parser.Error
	if errors.As(err, &perr) && perr.Pos >= 0 {
		offset = perr.Pos
	}
	return &ParseError{Message: wrapped.Error(), Offset: offset, err: wrapped}
}

// MustParse compiles a JSONPath expression. Panics on failure.
func (p *Parser) MustParse(expr string) *Path {
	path, err := p.Parse(expr)
	if err != nil {
		panic(err)
	}
	return path
}
