package conditions

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or decimal literal.
	tokenNum
	// tokenStr is a quoted string literal, including its quotes.
	tokenStr
	// tokenBool is true or false in any case.
	tokenBool
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator, including the keyword operators and, or, not.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
	// tokenSep is the function argument separator.
	tokenSep
)

var tokennames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenStr:   "Str",
	tokenBool:  "Bool",
	tokenIdent: "Ident",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokennames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokennames[k]
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("conditions: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("conditions: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// follow consumes the next rune if it is r.
func (l *lexer) follow(r rune) (bool, error) {
	c, err := l.readRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	if c != r {
		l.unreadRune()
		return false, nil
	}
	return true, nil
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF. Whitespace runes in wseof are treated as EOF.
func (l *lexer) next(wseof string) (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	for {
		tok := lexToken{pos: l.rune}
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			if strings.ContainsRune(wseof, r) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			continue
		case '0' <= r && r <= '9':
			l.unreadRune()
			if err := l.scanNum(tok.pos); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case isIdentStart(r):
			l.unreadRune()
			if err := l.scanIdent(tok.pos); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			switch {
			case tok.text == "and", tok.text == "or", tok.text == "not":
				tok.kind = tokenOp
			case strings.EqualFold(tok.text, "true"), strings.EqualFold(tok.text, "false"):
				tok.kind = tokenBool
			default:
				tok.kind = tokenIdent
			}
			return tok, nil
		case r == '"', r == '\'':
			if err := l.scanStr(r, tok.pos); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenStr
			return tok, nil
		case r == '(':
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		case r == ',':
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == '+', r == '-', r == '*', r == '/':
			tok.text = string(r)
			tok.kind = tokenOp
			return tok, nil
		case r == '>', r == '<', r == '=', r == '!':
			eq, err := l.follow('=')
			if err != nil {
				return tok, err
			}
			tok.text = string(r)
			if eq {
				tok.text += "="
			}
			tok.kind = tokenOp
			return tok, nil
		case r == '&', r == '|':
			ok, err := l.follow(r)
			if err != nil {
				return tok, err
			}
			l.buf.WriteRune(r)
			if !ok {
				return tok, l.error("operator", tok.pos)
			}
			l.buf.WriteRune(r)
			tok.text = l.buf.String()
			tok.kind = tokenOp
			return tok, nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("", tok.pos)
		}
	}
}

// scanNum scans digits with an optional fractional part. A number may not run
// directly into a name or another dot.
func (l *lexer) scanNum(pos int) error {
	var dot, frac bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		switch {
		case '0' <= r && r <= '9':
			l.buf.WriteRune(r)
			if dot {
				frac = true
			}
			continue
		case r == '.' && !dot:
			l.buf.WriteRune(r)
			dot = true
			continue
		case r == '.', r == '_', unicode.IsLetter(r):
			l.buf.WriteRune(r)
			return l.error("number", pos)
		}
		l.unreadRune()
		break
	}
	if dot && !frac {
		return l.error("number", pos)
	}
	var err error
	if dot {
		_, err = strconv.ParseFloat(l.buf.String(), 64)
	} else {
		_, err = strconv.ParseInt(l.buf.String(), 10, 64)
	}
	if err != nil {
		return l.error("number", pos)
	}
	return nil
}

func (l *lexer) scanIdent(pos int) error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case isIdentStart(r), '0' <= r && r <= '9':
			l.buf.WriteRune(r)
		case unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
			return l.error("identifier", pos)
		default:
			l.unreadRune()
			return nil
		}
	}
}

// scanStr scans a string after its opening quote q. The buffer receives the
// string with both quotes.
func (l *lexer) scanStr(q rune, pos int) error {
	l.buf.WriteRune(q)
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.error("string", pos)
			}
			return err
		}
		l.buf.WriteRune(r)
		if r == q {
			return nil
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func (l *lexer) error(kind string, col int) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  col,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "identifier", "string", "operator", or the empty string (if a token
	// kind hadn't been decided).
	Kind string
	// Col is the 1-based rune column at which the invalid token starts.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}

// Is makes every LexError match ErrLexical.
func (err *LexError) Is(target error) bool {
	return target == ErrLexical
}
