package conditions

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function that expressions can call. Its signature is fixed: every
// call is checked against it before Call runs, so Call receives exactly
// len(Signature().Params) arguments of the declared kinds.
type Func interface {
	// Signature returns the declared parameter and result kinds.
	Signature() Signature
	// Call evaluates the function. It must not modify args. If the result's
	// kind does not match the signature, evaluation fails with a *TypeError.
	// Other errors are wrapped in a *CallError unless they are already
	// evaluation errors.
	Call(args []Value) (Value, error)
}

// Signature describes the parameters and result of a Func. Param and result
// kinds may be Number or Any to accept more than one kind.
type Signature struct {
	Params []Kind
	Result Kind
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, k := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	b.WriteString(") ")
	b.WriteString(s.Result.String())
	return b.String()
}

// accepts reports whether args match the parameters.
func (s Signature) accepts(args []Value) bool {
	if len(args) != len(s.Params) {
		return false
	}
	for i, k := range s.Params {
		if !k.accepts(args[i].Kind()) {
			return false
		}
	}
	return true
}

type funcof struct {
	sig Signature
	f   func(args []Value) (Value, error)
}

func (f funcof) Signature() Signature {
	return f.sig
}

func (f funcof) Call(args []Value) (Value, error) {
	return f.f(args)
}

// FuncOf wraps a Go function with a signature into a Func.
func FuncOf(sig Signature, f func(args []Value) (Value, error)) Func {
	sig.Params = append(([]Kind)(nil), sig.Params...)
	return funcof{sig: sig, f: f}
}

// Niladic wraps a function of zero arguments, generally a function which
// computes a constant, into a Func.
func Niladic(result Kind, f func() Value) Func {
	return funcof{
		sig: Signature{Result: result},
		f:   func([]Value) (Value, error) { return f(), nil },
	}
}

// Monadic wraps a function of one argument into a Func.
func Monadic(param, result Kind, f func(Value) (Value, error)) Func {
	return funcof{
		sig: Signature{Params: []Kind{param}, Result: result},
		f:   func(args []Value) (Value, error) { return f(args[0]) },
	}
}

// MathFuncs returns a new map of mathematical functions suitable for
// SetFuncs. The functions compute with 64 bits of precision and return
// floats:
//
//	exp(x)    e^x
//	ln(x)     natural logarithm
//	log(x)    base-10 logarithm
//	sqrt(x)   square root
//	pow(x, y) x^y
//	pi()      π
//	e()       e
func MathFuncs() map[string]Func {
	return map[string]Func{
		"exp": bigMonadic("exp", positiveOrAny(false), func(out, in *big.Float) *big.Float {
			// Past these bounds the result is outside the range of float64.
			if x, _ := in.Float64(); x > 710 || x < -750 {
				return out.SetFloat64(math.Exp(x))
			}
			return bigfloat.Exp(out, in)
		}),
		"ln":  bigMonadic("ln", positiveOrAny(true), bigfloat.Log),
		"log": bigMonadic("log", positiveOrAny(true), func(out, in *big.Float) *big.Float {
			bigfloat.Log(out, in)
			in.SetFloat64(10).SetPrec(out.Prec())
			bigfloat.Log(in, in)
			return out.Quo(out, in)
		}),
		"sqrt": bigMonadic("sqrt", func(x float64) bool { return x >= 0 }, (*big.Float).Sqrt),
		"pow":  FuncOf(Signature{Params: []Kind{Number, Number}, Result: Float}, pow),
		"pi": Niladic(Float, func() Value {
			return bigconst(bigfloat.Pi)
		}),
		"e": Niladic(Float, func() Value {
			return bigconst(func(out *big.Float) *big.Float {
				var one big.Float
				one.SetFloat64(1)
				return bigfloat.Exp(out, &one)
			})
		}),
	}
}

// prec is the working precision of the math functions.
const prec = 64

// positiveOrAny returns a domain check for strictly positive arguments, or
// one that accepts every finite argument.
func positiveOrAny(positive bool) func(float64) bool {
	if positive {
		return func(x float64) bool { return x > 0 }
	}
	return func(x float64) bool { return !math.IsNaN(x) }
}

// bigMonadic wraps a big.Float function of one variable into a Func. f must
// set out to its result; its return value is ignored. If f panics with an
// error unwrapping to big.ErrNaN, the call fails with a *DomainError.
func bigMonadic(name string, domain func(float64) bool, f func(out, in *big.Float) *big.Float) Func {
	return Monadic(Number, Float, func(v Value) (r Value, err error) {
		x := v.asFloat()
		if !domain(x) || math.IsInf(x, 0) {
			return Value{}, &DomainError{X: v, Arg: 1, Func: name}
		}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			perr, ok := p.(error)
			if !ok || !errors.As(perr, &big.ErrNaN{}) {
				panic(p)
			}
			r, err = Value{}, &DomainError{X: v, Arg: 1, Func: name}
		}()
		in := new(big.Float).SetPrec(prec).SetFloat64(x)
		out := new(big.Float).SetPrec(prec)
		f(out, in)
		z, _ := out.Float64()
		return FloatValue(z), nil
	})
}

func bigconst(f func(out *big.Float) *big.Float) Value {
	out := new(big.Float).SetPrec(prec)
	f(out)
	z, _ := out.Float64()
	return FloatValue(z)
}

// pow computes x^y. A negative base is allowed only with an integral
// exponent.
func pow(args []Value) (Value, error) {
	x, y := args[0].asFloat(), args[1].asFloat()
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return Value{}, &DomainError{X: args[0], Arg: 1, Func: "pow"}
	case math.IsNaN(y) || math.IsInf(y, 0):
		return Value{}, &DomainError{X: args[1], Arg: 2, Func: "pow"}
	case y == 0:
		return FloatValue(1), nil
	case x == 0 && y > 0:
		return FloatValue(0), nil
	case x == 0:
		return Value{}, &DomainError{X: args[0], Arg: 1, Func: "pow"}
	case x < 0 && y != math.Trunc(y):
		return Value{}, &DomainError{X: args[0], Arg: 1, Func: "pow"}
	}
	neg := x < 0 && math.Mod(y, 2) != 0
	var z float64
	if l := y * math.Log2(math.Abs(x)); l > 1100 || l < -1100 {
		z = math.Pow(math.Abs(x), y)
	} else {
		bx := new(big.Float).SetPrec(prec).SetFloat64(math.Abs(x))
		by := new(big.Float).SetPrec(prec).SetFloat64(y)
		z, _ = bigfloat.Pow(new(big.Float).SetPrec(prec), bx, by).Float64()
	}
	if neg {
		z = -z
	}
	return FloatValue(z), nil
}

// StringFuncs returns a new map of string functions suitable for SetFuncs:
//
//	len(s)            number of characters in s
//	lower(s)          s in lower case
//	upper(s)          s in upper case
//	trim(s)           s without leading and trailing whitespace
//	contains(s, t)    whether t is within s
//	startswith(s, t)  whether s begins with t
//	endswith(s, t)    whether s ends with t
func StringFuncs() map[string]Func {
	return map[string]Func{
		"len": Monadic(String, Int, func(v Value) (Value, error) {
			return IntValue(int64(utf8.RuneCountInString(v.s))), nil
		}),
		"lower":      strmap(strings.ToLower),
		"upper":      strmap(strings.ToUpper),
		"trim":       strmap(strings.TrimSpace),
		"contains":   strpred(strings.Contains),
		"startswith": strpred(strings.HasPrefix),
		"endswith":   strpred(strings.HasSuffix),
	}
}

func strmap(f func(string) string) Func {
	return Monadic(String, String, func(v Value) (Value, error) {
		return StringValue(f(v.s)), nil
	})
}

func strpred(f func(s, t string) bool) Func {
	sig := Signature{Params: []Kind{String, String}, Result: Bool}
	return FuncOf(sig, func(args []Value) (Value, error) {
		return BoolValue(f(args[0].s, args[1].s)), nil
	})
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. It belongs to ErrRuntime.
type DomainError struct {
	// X is the out-of-domain argument.
	X Value
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Is(target error) bool {
	return target == ErrRuntime
}
