package conditions

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the variable or function name, or the operator text.
	name string
	// val is the value of a literal.
	val Value

	left  *node
	right *node
	// args are the arguments of a call.
	args []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeLit  // literal val
	nodeName // lookup(name)
	nodeCall // call name with args

	nodeNeg // -left
	nodeNot // not left

	nodeOr  // left or right
	nodeAnd // left and right
	nodeEq  // left == right
	nodeNe  // left != right
	nodeGt  // left > right
	nodeLt  // left < right
	nodeGe  // left >= right
	nodeLe  // left <= right
	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
)

// opinfo describes how an operator node is displayed.
type opinfo struct {
	// name is the node name used in structure dumps.
	name string
	// sym is the canonical operator text.
	sym string
	// prec is the binding strength, matching the parser's precedence.
	prec int8
}

var ops = [...]opinfo{
	nodeNone: {"None", "", 0},
	nodeLit:  {"Literal", "", precTerm},
	nodeName: {"Variable", "", precTerm},
	nodeCall: {"FunctionCall", "", precTerm},
	nodeNeg:  {"Negative", "-", precUnary},
	nodeNot:  {"Not", "not", precUnary},
	nodeOr:   {"Or", "or", precOr},
	nodeAnd:  {"And", "and", precAnd},
	nodeEq:   {"Equals", "==", precRel},
	nodeNe:   {"NotEquals", "!=", precRel},
	nodeGt:   {"GreaterThan", ">", precRel},
	nodeLt:   {"LessThan", "<", precRel},
	nodeGe:   {"GreaterThanEquals", ">=", precRel},
	nodeLe:   {"LessThanEquals", "<=", precRel},
	nodeAdd:  {"Plus", "+", precAdd},
	nodeSub:  {"Minus", "-", precAdd},
	nodeMul:  {"Multiply", "*", precMul},
	nodeDiv:  {"Divide", "/", precMul},
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(ops) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return ops[k].name
}

func (k nodeKind) unary() bool {
	return k == nodeNeg || k == nodeNot
}

func (k nodeKind) binary() bool {
	return k >= nodeOr && k <= nodeDiv
}

// QuoteStyle selects how Write renders string literals.
type QuoteStyle int8

const (
	// SingleQuote writes 'text'.
	SingleQuote QuoteStyle = iota
	// EscapedSingleQuote writes \'text\', for embedding in single-quoted
	// host strings.
	EscapedSingleQuote
	// DoubleQuote writes "text".
	DoubleQuote
	// EscapedDoubleQuote writes \"text\", for embedding in double-quoted
	// host strings.
	EscapedDoubleQuote
)

// dump writes the node and its children, one per line, indented by two
// spaces per level of depth.
func (n *node) dump(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	switch n.kind {
	case nodeLit:
		switch n.val.Kind() {
		case Bool:
			b.WriteString("Boolean(")
		case Int, Float:
			b.WriteString("Number(")
		case String:
			b.WriteString("String(")
		}
		b.WriteString(n.val.String())
		b.WriteString(")\n")
	case nodeName, nodeCall:
		b.WriteString(n.kind.String())
		b.WriteByte('(')
		b.WriteString(n.name)
		b.WriteString(")\n")
		for _, arg := range n.args {
			arg.dump(b, depth+1)
		}
	default:
		if !n.kind.unary() && !n.kind.binary() {
			panic("conditions: invalid node kind " + n.kind.String() + " after dumping " + b.String())
		}
		b.WriteString(n.kind.String())
		b.WriteByte('\n')
		n.left.dump(b, depth+1)
		if n.right != nil {
			n.right.dump(b, depth+1)
		}
	}
}

// write writes the node as expression text. Subexpressions are parenthesized
// only where the parser would otherwise group them differently.
func (n *node) write(b *strings.Builder, q QuoteStyle) {
	switch n.kind {
	case nodeLit:
		if n.val.Kind() == String {
			quote(b, n.val.s, q)
			return
		}
		b.WriteString(n.val.String())
	case nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		for i, arg := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.write(b, q)
		}
		b.WriteByte(')')
	case nodeNeg:
		b.WriteByte('-')
		n.left.group(b, q, ops[nodeNeg].prec)
	case nodeNot:
		b.WriteString("not ")
		n.left.group(b, q, ops[nodeNot].prec)
	default:
		if !n.kind.binary() {
			panic("conditions: invalid node kind " + n.kind.String() + " after writing " + b.String())
		}
		p := ops[n.kind].prec
		n.left.group(b, q, p)
		b.WriteByte(' ')
		b.WriteString(ops[n.kind].sym)
		b.WriteByte(' ')
		// All binary operators are left-associative, so a right operand of
		// equal precedence needs parentheses.
		n.right.group(b, q, p+1)
	}
}

// group writes the node, parenthesized if it binds less tightly than prec.
func (n *node) group(b *strings.Builder, q QuoteStyle, prec int8) {
	if ops[n.kind].prec >= prec {
		n.write(b, q)
		return
	}
	b.WriteByte('(')
	n.write(b, q)
	b.WriteByte(')')
}

// quote writes a string literal. The lexer has no escapes, so a string
// containing the requested plain quote is written with the other one.
func quote(b *strings.Builder, s string, q QuoteStyle) {
	switch q {
	case SingleQuote:
		if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
			q = DoubleQuote
		}
	case DoubleQuote:
		if strings.ContainsRune(s, '"') && !strings.ContainsRune(s, '\'') {
			q = SingleQuote
		}
	}
	var l string
	switch q {
	case SingleQuote:
		l = `'`
	case EscapedSingleQuote:
		l = `\'`
	case DoubleQuote:
		l = `"`
	case EscapedDoubleQuote:
		l = `\"`
	default:
		panic("conditions: invalid quote style " + strconv.Itoa(int(q)))
	}
	b.WriteString(l)
	b.WriteString(s)
	b.WriteString(l)
}

// walk calls f on n and each of its descendants in pre-order.
func (n *node) walk(f func(*node)) {
	f(n)
	if n.left != nil {
		n.left.walk(f)
	}
	if n.right != nil {
		n.right.walk(f)
	}
	for _, arg := range n.args {
		arg.walk(f)
	}
}
