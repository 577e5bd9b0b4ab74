package conditions

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Trace records the steps of evaluating an expression, one line per node in
// the order the nodes finish. It is purely a debugging aid; tracing never
// changes the result of an evaluation. A Trace must not be shared by
// concurrent evaluations.
type Trace struct {
	lines []string
}

// Lines returns the recorded lines.
func (t *Trace) Lines() []string {
	return append(([]string)(nil), t.lines...)
}

// Len returns the number of recorded lines.
func (t *Trace) Len() int {
	return len(t.lines)
}

// Reset clears the trace.
func (t *Trace) Reset() {
	t.lines = t.lines[:0]
}

// String joins the recorded lines with newlines.
func (t *Trace) String() string {
	return strings.Join(t.lines, "\n")
}

func (t *Trace) printf(format string, args ...any) {
	if t == nil {
		return
	}
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Eval evaluates the expression in ctx. If trace is not nil, it receives a
// line describing each evaluated node. A nil ctx is an empty context.
//
// The error, if any, is a *TypeError, *NameError, *CallError, *DomainError,
// or *ZeroDivisionError, or an error matching ErrType or ErrRuntime returned
// by a Func.
func (e *Expr) Eval(ctx *Context, trace *Trace) (Value, error) {
	return e.n.eval(ctx, trace)
}

// Eval evaluates an expression with ctx.
func (ctx *Context) Eval(e *Expr) (Value, error) {
	return e.Eval(ctx, nil)
}

// Eval is a shortcut to parse an expression and return its result in a new
// context created with the given options.
func Eval(src io.RuneScanner, opts ...ContextOption) (Value, error) {
	a, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return a.Eval(NewContext(opts...), nil)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (Value, error) {
	return Eval(strings.NewReader(src), opts...)
}

// eval computes the node's value. Children are evaluated left to right
// before their parent.
func (n *node) eval(ctx *Context, trace *Trace) (Value, error) {
	switch n.kind {
	case nodeLit:
		switch n.val.Kind() {
		case Bool:
			trace.printf("Boolean: %v", n.val)
		case Int, Float:
			trace.printf("Number: %v", n.val)
		case String:
			trace.printf("String: %v", n.val)
		}
		return n.val, nil
	case nodeName:
		b, ok := ctx.lookup(n.name)
		switch {
		case !ok:
			return Value{}, &NameError{Name: n.name}
		case b.fn != nil:
			return Value{}, &TypeError{Name: n.name, Want: Any, Func: true}
		case b.native != nil:
			return Value{}, &TypeError{Name: n.name, Want: Any, Native: b.native}
		}
		trace.printf("Fetching variable: %s -> %v", n.name, b.val)
		return b.val, nil
	case nodeCall:
		return n.call(ctx, trace)
	case nodeNeg, nodeNot:
		x, err := n.left.eval(ctx, trace)
		if err != nil {
			return Value{}, err
		}
		r, err := unary(n.kind, x)
		if err != nil {
			return Value{}, err
		}
		trace.printf("Evaluated: %s %v = %v", ops[n.kind].sym, x, r)
		return r, nil
	default:
		if !n.kind.binary() {
			panic("conditions: invalid AST node " + n.kind.String())
		}
		l, err := n.left.eval(ctx, trace)
		if err != nil {
			return Value{}, err
		}
		r, err := n.right.eval(ctx, trace)
		if err != nil {
			return Value{}, err
		}
		v, err := binaries[n.kind](l, r)
		if err != nil {
			return Value{}, err
		}
		trace.printf("Evaluated: %v %s %v = %v", l, ops[n.kind].sym, r, v)
		return v, nil
	}
}

// call evaluates a function call node.
func (n *node) call(ctx *Context, trace *Trace) (Value, error) {
	b, ok := ctx.lookup(n.name)
	if !ok {
		return Value{}, &NameError{Name: n.name, Func: true}
	}
	args := make([]Value, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(ctx, trace)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	if b.fn == nil {
		return Value{}, &CallError{Func: n.name, Args: args}
	}
	sig := b.fn.Signature()
	if !sig.accepts(args) {
		return Value{}, &CallError{Func: n.name, Args: args, Sig: &sig}
	}
	r, err := b.fn.Call(args)
	if err != nil {
		if evalError(err) {
			return Value{}, err
		}
		return Value{}, &CallError{Func: n.name, Args: args, Sig: &sig, Err: err}
	}
	if !sig.Result.accepts(r.Kind()) {
		return Value{}, &TypeError{Name: n.name, Want: sig.Result, Got: r, Func: true}
	}
	if trace != nil {
		s := make([]string, len(args))
		for i, v := range args {
			s[i] = v.GoString()
		}
		trace.printf("Calling function: %s(%s) = %v", n.name, strings.Join(s, ", "), r)
	}
	return r, nil
}

// unary applies a unary operator.
func unary(op nodeKind, x Value) (Value, error) {
	if op == nodeNot {
		return BoolValue(!ToBool(x)), nil
	}
	x, err := ToNumber(x)
	if err != nil {
		return Value{}, err
	}
	if x.kind == Float {
		return FloatValue(-x.f), nil
	}
	if x.i == math.MinInt64 {
		return FloatValue(-float64(x.i)), nil
	}
	return IntValue(-x.i), nil
}

// binaries holds the implementation of each binary operator.
var binaries = [...]func(l, r Value) (Value, error){
	nodeOr: func(l, r Value) (Value, error) {
		return BoolValue(ToBool(l) || ToBool(r)), nil
	},
	nodeAnd: func(l, r Value) (Value, error) {
		return BoolValue(ToBool(l) && ToBool(r)), nil
	},
	nodeEq: func(l, r Value) (Value, error) {
		eq, err := equal(l, r)
		return BoolValue(eq), err
	},
	nodeNe: func(l, r Value) (Value, error) {
		eq, err := equal(l, r)
		return BoolValue(!eq), err
	},
	nodeGt: compare(func(c int) bool { return c > 0 }),
	nodeLt: compare(func(c int) bool { return c < 0 }),
	nodeGe: compare(func(c int) bool { return c >= 0 }),
	nodeLe: compare(func(c int) bool { return c <= 0 }),
	nodeAdd: arith(
		func(a, b int64) (int64, bool) {
			c := a + b
			return c, (c > a) == (b > 0)
		},
		func(a, b float64) float64 { return a + b },
	),
	nodeSub: arith(
		func(a, b int64) (int64, bool) {
			c := a - b
			return c, (c < a) == (b > 0)
		},
		func(a, b float64) float64 { return a - b },
	),
	nodeMul: arith(
		func(a, b int64) (int64, bool) {
			if a == 0 || b == 0 {
				return 0, true
			}
			c := a * b
			if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return 0, false
			}
			return c, c/b == a
		},
		func(a, b float64) float64 { return a * b },
	),
	nodeDiv: divide,
}

// equal converts r to the kind of l and compares them.
func equal(l, r Value) (bool, error) {
	switch l.kind {
	case Bool:
		return (l.i != 0) == ToBool(r), nil
	case Int, Float:
		r, err := ToNumber(r)
		if err != nil {
			return false, err
		}
		if l.kind == Int && r.kind == Int {
			return l.i == r.i, nil
		}
		return l.asFloat() == r.asFloat(), nil
	case String:
		return l.s == ToString(r), nil
	default:
		panic("conditions: invalid value kind " + l.kind.String())
	}
}

// numbers converts both operands with ToNumber.
func numbers(l, r Value) (Value, Value, error) {
	l, err := ToNumber(l)
	if err != nil {
		return Value{}, Value{}, err
	}
	r, err = ToNumber(r)
	if err != nil {
		return Value{}, Value{}, err
	}
	return l, r, nil
}

func compare(ok func(c int) bool) func(l, r Value) (Value, error) {
	return func(l, r Value) (Value, error) {
		l, r, err := numbers(l, r)
		if err != nil {
			return Value{}, err
		}
		var c int
		if l.kind == Int && r.kind == Int {
			c = cmp(l.i, r.i)
		} else {
			c = cmp(l.asFloat(), r.asFloat())
		}
		return BoolValue(ok(c)), nil
	}
}

func cmp[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// arith creates an arithmetic operator. Integer operands use fi unless it
// reports overflow, in which case the operation is done in floating point.
func arith(fi func(a, b int64) (int64, bool), ff func(a, b float64) float64) func(l, r Value) (Value, error) {
	return func(l, r Value) (Value, error) {
		l, r, err := numbers(l, r)
		if err != nil {
			return Value{}, err
		}
		if l.kind == Int && r.kind == Int {
			if c, ok := fi(l.i, r.i); ok {
				return IntValue(c), nil
			}
		}
		return FloatValue(ff(l.asFloat(), r.asFloat())), nil
	}
}

// divide divides l by r. The quotient of integers is an integer when it is
// exact and a float otherwise.
func divide(l, r Value) (Value, error) {
	l, r, err := numbers(l, r)
	if err != nil {
		return Value{}, err
	}
	if r.asFloat() == 0 {
		return Value{}, &ZeroDivisionError{Dividend: l}
	}
	if l.kind == Int && r.kind == Int && l.i%r.i == 0 && !(l.i == math.MinInt64 && r.i == -1) {
		return IntValue(l.i / r.i), nil
	}
	return FloatValue(l.asFloat() / r.asFloat()), nil
}
