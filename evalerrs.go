package conditions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error classes. Every error from parsing or evaluation matches exactly one of
// these with errors.Is.
var (
	// ErrLexical is the class of *LexError.
	ErrLexical = errors.New("lexical error")
	// ErrSyntax is the class of malformed expressions.
	ErrSyntax = errors.New("syntax error")
	// ErrType is the class of *TypeError.
	ErrType = errors.New("type error")
	// ErrRuntime is the class of *NameError, *CallError, and *DomainError.
	ErrRuntime = errors.New("runtime error")
	// ErrDivisionByZero is the class of *ZeroDivisionError.
	ErrDivisionByZero = errors.New("division by zero")
)

// TypeError is an error indicating a value of the wrong kind, such as a
// string that cannot be converted to a number.
type TypeError struct {
	// Name is the variable or function whose value was wrong, if any.
	Name string
	// Want is the required kind.
	Want Kind
	// Got is the value that could not be used. It is meaningless if Native
	// is not nil.
	Got Value
	// Native is a Go value that has no Value representation.
	Native any
	// Func is whether Name refers to a function. For a variable, it means the
	// name is bound to a function rather than a value. Otherwise, Got is the
	// function's result.
	Func bool
}

func (err *TypeError) Error() string {
	switch {
	case err.Native != nil && err.Name != "":
		return fmt.Sprintf("variable %q has unsupported type %T", err.Name, err.Native)
	case err.Native != nil:
		return fmt.Sprintf("unsupported type %T", err.Native)
	case err.Func && err.Want == Any:
		return "variable " + strconv.Quote(err.Name) + " is a function"
	case err.Func:
		return "function " + strconv.Quote(err.Name) + " returned " + err.Got.Kind().String() + ", want " + err.Want.String()
	default:
		return "cannot convert " + err.Got.GoString() + " to " + err.Want.String()
	}
}

func (err *TypeError) Is(target error) bool {
	return target == ErrType
}

// NameError is an error from a lookup for a variable or function that is
// missing from the evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// Func is whether the name was used as a function.
	Func bool
}

func (err *NameError) Error() string {
	if err.Func {
		return "undefined function: " + strconv.Quote(err.Name)
	}
	return "undefined variable: " + strconv.Quote(err.Name)
}

func (err *NameError) Is(target error) bool {
	return target == ErrRuntime
}

// CallError is an error calling a function: the name is not bound to a
// function, the arguments don't match its signature, or the function itself
// failed.
type CallError struct {
	// Func is the function name that was called.
	Func string
	// Args are the evaluated arguments.
	Args []Value
	// Sig is the function's signature, or nil if the name is not bound to a
	// function.
	Sig *Signature
	// Err is the error returned by the function, if any.
	Err error
}

func (err *CallError) Error() string {
	switch {
	case err.Sig == nil:
		return strconv.Quote(err.Func) + " is not a function"
	case err.Err != nil:
		return "calling " + err.Func + ": " + err.Err.Error()
	default:
		kinds := make([]string, len(err.Args))
		for i, v := range err.Args {
			kinds[i] = v.Kind().String()
		}
		return "cannot call " + err.Func + err.Sig.String() + " with (" + strings.Join(kinds, ", ") + ")"
	}
}

func (err *CallError) Is(target error) bool {
	return target == ErrRuntime
}

func (err *CallError) Unwrap() error {
	return err.Err
}

// ZeroDivisionError is an error indicating division by zero.
type ZeroDivisionError struct {
	// Dividend is the numeric left operand.
	Dividend Value
}

func (err *ZeroDivisionError) Error() string {
	return "division by zero: " + err.Dividend.String() + " / 0"
}

func (err *ZeroDivisionError) Is(target error) bool {
	return target == ErrDivisionByZero
}

// evalError reports whether err already belongs to one of the evaluation
// error classes.
func evalError(err error) bool {
	return errors.Is(err, ErrType) || errors.Is(err, ErrRuntime) || errors.Is(err, ErrDivisionByZero)
}
