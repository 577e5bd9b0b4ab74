// Package conditions implements a small expression language for evaluating
// conditions supplied as text at runtime.
//
// An expression combines literals, variables, and function calls with the
// usual operators: "age >= 18 and not is_banned" or "name == 'fred'" or
// "(price - discount) * qty > limit". Values are booleans, integers, floats,
// and strings. Operators convert their operands as needed: arithmetic and
// ordering work on numbers, and, or, and not work on truth values, and the
// right side of == or != is converted to the kind of the left side.
//
// Parse an expression once and evaluate it against as many contexts as you
// like. A parsed Expr is never modified, so it may be evaluated from several
// goroutines at once.
package conditions
