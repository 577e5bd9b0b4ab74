package conditions

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	eofopt   string
	depthopt int
)

// parsectx holds general data for parsing.
type parsectx struct {
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// nest is the number of brackets currently open. Whitespace never ends
	// an expression inside brackets.
	nest int
	// maxdepth is the maximum nesting depth, or 0 for no limit.
	maxdepth int
}

// stop returns the whitespace that ends the expression at the current
// position.
func (p *parsectx) stop() string {
	if p.nest > 0 {
		return ""
	}
	return p.wseof
}

// descend checks that parsing may go one level deeper than depth at tok.
func (p *parsectx) descend(tok lexToken, depth int) error {
	if p.maxdepth > 0 && depth >= p.maxdepth {
		return &DepthError{Col: tok.pos, Max: p.maxdepth}
	}
	return nil
}

// StopOn tells the parser to treat a list of whitespace characters as ending
// the expression. Whitespace does not end an expression where a term is
// expected, e.g. at the beginning of an expression or following an operator,
// nor anywhere inside brackets. The remainder of the input is left unread so
// that another expression can be parsed from it.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			panic("conditions: cannot stop on " + strconv.QuoteRune(r))
		}
		if have(r) {
			continue
		}
		v = append(v, r)
	}
	return eofopt(v)
}

func (o eofopt) parseOption(p parsectx) parsectx {
	p.wseof = string(o)
	return p
}

// MaxDepth limits how deeply brackets, unary operators, and calls may nest.
// Evaluation recurses once per level, so programs that accept untrusted
// expressions should set a limit. Zero or negative means no limit, which is
// the default.
func MaxDepth(n int) ParseOption {
	if n < 0 {
		n = 0
	}
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	return p
}
