package conditions

import (
	"errors"
	"strconv"
)

// OperatorError is an error indicating an operator token in a position where
// it cannot be used, like "* x" or "x not y". It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position at which the mismatch was found.
	Col int
	// Left is the opening bracket, or empty if there was none.
	Left string
	// Right is the closing bracket, or empty if the input ended first.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating a comma outside a function argument
// list. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating a missing operand or an empty
// subexpression. It implements InputError.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression, or empty at the end of
	// the input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// TokenError is an error indicating a term where an operator or the end of
// the expression was expected, e.g. "x y". It implements InputError.
type TokenError struct {
	// Col is the position of the token.
	Col int
	// Text is the unexpected token.
	Text string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "unexpected "+strconv.Quote(err.Text)+", expected operator")
}

func (err *TokenError) Pos() int {
	return err.Col
}

// DepthError is an error indicating an expression nested more deeply than
// allowed by MaxDepth. It implements InputError.
type DepthError struct {
	// Col is the position of the token that would exceed the limit.
	Col int
	// Max is the nesting limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "expression nested deeper than "+strconv.Itoa(err.Max)+" levels")
}

func (err *DepthError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the 1-based rune column of
	// the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*LexError)(nil)
)

func (err *OperatorError) Is(target error) bool        { return target == ErrSyntax }
func (err *BracketError) Is(target error) bool         { return target == ErrSyntax }
func (err *SeparatorError) Is(target error) bool       { return target == ErrSyntax }
func (err *EmptyExpressionError) Is(target error) bool { return target == ErrSyntax }
func (err *TokenError) Is(target error) bool           { return target == ErrSyntax }
func (err *DepthError) Is(target error) bool           { return target == ErrSyntax }

// IsIncomplete reports whether err was caused only by the input ending too
// soon, so that more input could complete the expression. This includes
// unclosed brackets and strings and operators missing their right operands.
func IsIncomplete(err error) bool {
	var be *BracketError
	if errors.As(err, &be) {
		return be.Left != "" && be.Right == ""
	}
	var ee *EmptyExpressionError
	if errors.As(err, &ee) {
		return ee.End == "" && ee.Col > 1
	}
	var le *LexError
	if errors.As(err, &le) {
		return le.Kind == "string"
	}
	return false
}
