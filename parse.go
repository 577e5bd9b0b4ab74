package conditions

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Or   = And { ('or' | '||') And }
// And  = Rel { ('and' | '&&') Rel }
// Rel  = Add { ('=' | '==' | '!=' | '>' | '<' | '>=' | '<=') Add }
// Add  = Mul { ('+' | '-') Mul }
// Mul  = Un { ('*' | '/') Un }
// Un   = ('not' | '!' | '-') Un | Term
// Term = '(' Or ')' | bool | num | str | name [ '(' [ Or { ',' Or } ] ')' ]

// Expr is a parsed expression that can be evaluated with a context. An Expr
// is immutable and may be evaluated concurrently.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
	// funcs is the list of function names called in the expression.
	funcs []string
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order. Parsing either consumes the entire input, up
// to a StopOn rune if any, or returns an error.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	n, err := parseterm(scan, &p, exprprec, 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, itShouldNotHaveEndedThisWay(scan.must(), false)
	}
	if tok := scan.must(); tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, false)
	}
	return newExpr(n), nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// MustParse is like ParseString but panics if the expression cannot be
// parsed. It simplifies initialization of global expressions.
func MustParse(src string, opts ...ParseOption) *Expr {
	e, err := ParseString(src, opts...)
	if err != nil {
		panic("conditions: MustParse(" + strconv.Quote(src) + "): " + err.Error())
	}
	return e
}

func newExpr(n *node) *Expr {
	names := make(map[string]bool)
	funcs := make(map[string]bool)
	n.walk(func(n *node) {
		switch n.kind {
		case nodeName:
			names[n.name] = true
		case nodeCall:
			funcs[n.name] = true
		}
	})
	return &Expr{n: n, names: keys(names), funcs: keys(funcs)}
}

func keys(m map[string]bool) []string {
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// parseterm parses a subexpression whose operators all bind more tightly than
// until. If there is no error, then parseterm pushes the last token it scans,
// including EOF. If the subexpression is empty because it starts at a close
// bracket, the result is nil with no error; callers must create an error in
// contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator, depth int) (*node, error) {
	n, err := parselhs(scan, p, depth)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next(p.stop())
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				// not or ! where a binary operator belongs.
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec, depth)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyerr(scan.must())
			}
			n = &node{kind: prec.op, name: tok.text, left: n, right: rhs}
		case tokenNum, tokenStr, tokenBool, tokenIdent, tokenOpen:
			// Two terms in a row.
			return nil, &TokenError{Col: tok.pos, Text: tok.text}
		case tokenClose, tokenSep, tokenEOF:
			// End of subexpression.
			scan.push(tok)
			return n, nil
		default:
			panic("conditions: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first term of a subexpression, including any unary
// operators applied to it.
func parselhs(scan *lexer, p *parsectx, depth int) (*node, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return &node{kind: nodeLit, name: tok.text, val: number(tok.text)}, nil
	case tokenStr:
		return &node{kind: nodeLit, name: tok.text, val: StringValue(tok.text[1 : len(tok.text)-1])}, nil
	case tokenBool:
		return &node{kind: nodeLit, name: tok.text, val: BoolValue(strings.EqualFold(tok.text, "true"))}, nil
	case tokenIdent:
		// Check for an argument list. We respect whitespace here so that
		// x\n(y) doesn't string together expressions.
		open, err := scan.next(p.stop())
		if err != nil {
			return nil, err
		}
		if open.kind != tokenOpen {
			scan.push(open)
			return &node{kind: nodeName, name: tok.text}, nil
		}
		if err := p.descend(open, depth); err != nil {
			return nil, err
		}
		p.nest++
		args, err := parsearglist(scan, p, depth+1)
		p.nest--
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeCall, name: tok.text, args: args}, nil
	case tokenOp:
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if err := p.descend(tok, depth); err != nil {
			return nil, err
		}
		rhs, err := parseterm(scan, p, prec, depth+1)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyerr(scan.must())
		}
		return &node{kind: prec.op, name: tok.text, left: rhs}, nil
	case tokenOpen:
		if err := p.descend(tok, depth); err != nil {
			return nil, err
		}
		p.nest++
		rhs, err := parseterm(scan, p, exprprec, depth+1)
		p.nest--
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end, true)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		// This might be part of f(), so just let the caller decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("conditions: unknown token: " + tok.String())
	}
}

// parsearglist parses the arguments of a call after the open bracket,
// consuming the close bracket.
func parsearglist(scan *lexer, p *parsectx, depth int) ([]*node, error) {
	var args []*node
	for {
		rhs, err := parseterm(scan, p, exprprec, depth)
		if err != nil {
			// As a special case, reporting an unclosed bracket is more helpful
			// than empty expression, if that's what we'd do here.
			var ee *EmptyExpressionError
			if errors.As(err, &ee) && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: "("}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if rhs == nil {
				// f() is allowed, but f(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			return append(args, rhs), nil
		case tokenSep:
			if rhs == nil {
				panic("conditions: empty argument before separator " + end.String())
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos, Left: "("}
		default:
			panic("conditions: parseterm ended on non-end token " + end.String())
		}
	}
}

// number converts a numeric literal token that the lexer has already
// validated.
func number(text string) Value {
	if strings.ContainsRune(text, '.') {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			panic("conditions: invalid number: " + text + " (" + err.Error() + ")")
		}
		return FloatValue(f)
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		panic("conditions: invalid number: " + text + " (" + err.Error() + ")")
	}
	return IntValue(i)
}

// emptyerr returns an error for a missing operand ended by tok.
func emptyerr(tok lexToken) error {
	if tok.kind == tokenEOF {
		return &EmptyExpressionError{Col: tok.pos, End: ""}
	}
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. open is whether the subexpression
// began with an open bracket.
func itShouldNotHaveEndedThisWay(tok lexToken, open bool) error {
	left := ""
	if open {
		left = "("
	}
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: left, Right: ""}
	case tokenClose:
		// A close bracket at the end of the whole input has no partner.
		return &BracketError{Col: tok.pos, Left: left, Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("conditions: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the variable names used when evaluating the expression, in
// sorted order.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// Funcs returns the function names called when evaluating the expression, in
// sorted order.
func (e *Expr) Funcs() []string {
	return append(([]string)(nil), e.funcs...)
}

// String writes the expression with single-quoted strings.
func (e *Expr) String() string {
	return e.Write(SingleQuote)
}

// Write re-serializes the expression. The result parses to an expression
// that evaluates the same way, though its spacing and parentheses may differ
// from the original text. q selects how string literals are quoted.
func (e *Expr) Write(q QuoteStyle) string {
	var b strings.Builder
	e.n.write(&b, q)
	return b.String()
}

// Dump describes the structure of the expression with one node per line,
// children indented two spaces beneath their parents. depth is the
// indentation level of the root.
func (e *Expr) Dump(depth int) string {
	var b strings.Builder
	e.n.dump(&b, depth)
	return b.String()
}

// Binding strengths. Higher binds more tightly.
const (
	precOr int8 = iota + 1
	precAnd
	precRel
	precAdd
	precMul
	precUnary
	precTerm
)

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "or", "||":
		return operator{precOr, false, nodeOr}
	case "and", "&&":
		return operator{precAnd, false, nodeAnd}
	case "=", "==":
		return operator{precRel, false, nodeEq}
	case "!=":
		return operator{precRel, false, nodeNe}
	case ">":
		return operator{precRel, false, nodeGt}
	case "<":
		return operator{precRel, false, nodeLt}
	case ">=":
		return operator{precRel, false, nodeGe}
	case "<=":
		return operator{precRel, false, nodeLe}
	case "+":
		return operator{precAdd, false, nodeAdd}
	case "-":
		return operator{precAdd, false, nodeSub}
	case "*":
		return operator{precMul, false, nodeMul}
	case "/":
		return operator{precMul, false, nodeDiv}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "not", "!":
		return operator{precUnary, true, nodeNot}
	case "-":
		return operator{precUnary, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
