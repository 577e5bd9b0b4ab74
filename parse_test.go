package conditions

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseStructure(t *testing.T) {
	cases := []struct {
		name string
		src  string
		dump string
	}{
		{"literal", "1", "Number(1)\n"},
		{"float", "2.50", "Number(2.5)\n"},
		{"string", "'fred'", "String(fred)\n"},
		{"bool", "TRUE", "Boolean(true)\n"},
		{"name", "x", "Variable(x)\n"},
		{"call", "f()", "FunctionCall(f)\n"},
		{
			"args", "f(1, x)",
			"FunctionCall(f)\n  Number(1)\n  Variable(x)\n",
		},
		{
			"nested call", "f(g(1))",
			"FunctionCall(f)\n  FunctionCall(g)\n    Number(1)\n",
		},
		{
			"precedence", "a + b * c",
			"Plus\n  Variable(a)\n  Multiply\n    Variable(b)\n    Variable(c)\n",
		},
		{
			"parens", "(a + b) * c",
			"Multiply\n  Plus\n    Variable(a)\n    Variable(b)\n  Variable(c)\n",
		},
		{
			"left assoc", "a - b - c",
			"Minus\n  Minus\n    Variable(a)\n    Variable(b)\n  Variable(c)\n",
		},
		{
			"left assoc div", "a / b / c",
			"Divide\n  Divide\n    Variable(a)\n    Variable(b)\n  Variable(c)\n",
		},
		{
			"and binds tighter", "a or b and c",
			"Or\n  Variable(a)\n  And\n    Variable(b)\n    Variable(c)\n",
		},
		{
			"symbolic logic", "a || b && c",
			"Or\n  Variable(a)\n  And\n    Variable(b)\n    Variable(c)\n",
		},
		{
			"relational", "a + 1 > b * 2",
			"GreaterThan\n  Plus\n    Variable(a)\n    Number(1)\n  Multiply\n    Variable(b)\n    Number(2)\n",
		},
		{
			"single equals", "x = 1",
			"Equals\n  Variable(x)\n  Number(1)\n",
		},
		{
			"double equals", "x == 1",
			"Equals\n  Variable(x)\n  Number(1)\n",
		},
		{
			"comparisons", "a != b and c >= d or e <= f and g < h",
			"Or\n  And\n    NotEquals\n      Variable(a)\n      Variable(b)\n    GreaterThanEquals\n      Variable(c)\n      Variable(d)\n  And\n    LessThanEquals\n      Variable(e)\n      Variable(f)\n    LessThan\n      Variable(g)\n      Variable(h)\n",
		},
		{
			"not", "not a and b",
			"And\n  Not\n    Variable(a)\n  Variable(b)\n",
		},
		{
			"bang", "!(a and b)",
			"Not\n  And\n    Variable(a)\n    Variable(b)\n",
		},
		{
			"not not", "not not a",
			"Not\n  Not\n    Variable(a)\n",
		},
		{
			"negative", "-1",
			"Negative\n  Number(1)\n",
		},
		{
			"negative binds tighter", "-a * b",
			"Multiply\n  Negative\n    Variable(a)\n  Variable(b)\n",
		},
		{
			"subtract negative", "a - -b",
			"Minus\n  Variable(a)\n  Negative\n    Variable(b)\n",
		},
		{
			"keyword-like names", "order and nothing",
			"And\n  Variable(order)\n  Variable(nothing)\n",
		},
		{
			"whitespace", " \t(a\n+\tb) ",
			"Plus\n  Variable(a)\n  Variable(b)\n",
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			e, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("couldn't parse %q: %v", c.src, err)
			}
			if got := e.Dump(0); got != c.dump {
				t.Errorf("wrong structure for %q:\nwant\n%s\ngot\n%s", c.src, c.dump, got)
			}
		})
	}
}

func TestDumpDepth(t *testing.T) {
	e := MustParse("not x")
	want := "    Not\n      Variable(x)\n"
	if got := e.Dump(2); got != want {
		t.Errorf("wrong indented dump: want %q, got %q", want, got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		err  error
		incr bool
	}{
		{"", &EmptyExpressionError{Col: 1}, false},
		{"1 +", &EmptyExpressionError{Col: 4}, true},
		{"not", &EmptyExpressionError{Col: 4}, true},
		{"1 + )", &EmptyExpressionError{Col: 5, End: ")"}, false},
		{"()", &EmptyExpressionError{Col: 2, End: ")"}, false},
		{"f(1,)", &EmptyExpressionError{Col: 5, End: ")"}, false},
		{"(1", &BracketError{Col: 3, Left: "("}, true},
		{"((1)", &BracketError{Col: 5, Left: "("}, true},
		{"f(1", &BracketError{Col: 4, Left: "("}, true},
		{"f(", &BracketError{Col: 3, Left: "("}, true},
		{"f(1, ", &BracketError{Col: 6, Left: "("}, true},
		{")", &BracketError{Col: 1, Right: ")"}, false},
		{"1)", &BracketError{Col: 2, Right: ")"}, false},
		{"(1))", &BracketError{Col: 4, Right: ")"}, false},
		{",", &SeparatorError{Col: 1, Sep: ","}, false},
		{"1, 2", &SeparatorError{Col: 2, Sep: ","}, false},
		{"f(,)", &SeparatorError{Col: 3, Sep: ","}, false},
		{"* 2", &OperatorError{Col: 1, Operator: "*", Unary: true}, false},
		{"1 + * 2", &OperatorError{Col: 5, Operator: "*", Unary: true}, false},
		{"1 not 2", &OperatorError{Col: 3, Operator: "not", Unary: false}, false},
		{"a ! b", &OperatorError{Col: 3, Operator: "!", Unary: false}, false},
		{"1 2", &TokenError{Col: 3, Text: "2"}, false},
		{"a 'b'", &TokenError{Col: 3, Text: "'b'"}, false},
		{"f(1)(2)", &TokenError{Col: 5, Text: "("}, false},
		{"a $", &LexError{Text: "$", Col: 3}, false},
		{"1.", &LexError{Text: "1.", Kind: "number", Col: 1}, false},
		{"'abc", &LexError{Text: "'abc", Kind: "string", Col: 1}, true},
		{"a & b", &LexError{Text: "&", Kind: "operator", Col: 3}, false},
	}
	for _, c := range cases {
		_, err := ParseString(c.src)
		if err == nil {
			t.Errorf("%q parsed without error, want %v", c.src, c.err)
			continue
		}
		if !reflect.DeepEqual(err, c.err) {
			t.Errorf("%q: want error %#v, got %#v", c.src, c.err, err)
		}
		class := ErrSyntax
		if _, ok := c.err.(*LexError); ok {
			class = ErrLexical
		}
		if !errors.Is(err, class) {
			t.Errorf("%q: error %v is not %v", c.src, err, class)
		}
		var ie InputError
		if !errors.As(err, &ie) {
			t.Errorf("%q: error %v does not implement InputError", c.src, err)
		} else if ie.Pos() < 1 {
			t.Errorf("%q: bad position %d", c.src, ie.Pos())
		}
		if IsIncomplete(err) != c.incr {
			t.Errorf("%q: IsIncomplete(%v) should be %v", c.src, err, c.incr)
		}
	}
}

func TestParseStopOn(t *testing.T) {
	src := strings.NewReader("a +\n b\nf(c,\n d)\n\n")
	e, err := Parse(src, StopOn('\n'))
	if err != nil {
		t.Fatalf("first expression: %v", err)
	}
	if got := e.String(); got != "a + b" {
		t.Errorf("first expression: want a + b, got %s", got)
	}
	e, err = Parse(src, StopOn('\n'))
	if err != nil {
		t.Fatalf("second expression: %v", err)
	}
	if got := e.String(); got != "f(c, d)" {
		t.Errorf("second expression: want f(c, d), got %s", got)
	}
	if src.Len() != 1 {
		t.Errorf("expected one newline left, have %d bytes", src.Len())
	}

	defer func() {
		if recover() == nil {
			t.Error("StopOn with non-space didn't panic")
		}
	}()
	StopOn('x')
}

func TestParseMaxDepth(t *testing.T) {
	cases := []struct {
		src   string
		depth int
		col   int
	}{
		{"((1))", 2, 0},
		{"(((1)))", 2, 3},
		{"--1", 2, 0},
		{"--1", 1, 2},
		{"f(g(h()))", 3, 0},
		{"f(g(h()))", 2, 6},
		{"1 + 2 + 3 + 4 + 5 + 6", 1, 0},
		{"not (a)", 1, 5},
		{"(((((((((1)))))))))", 0, 0},
	}
	for _, c := range cases {
		_, err := ParseString(c.src, MaxDepth(c.depth))
		if c.col == 0 {
			if err != nil {
				t.Errorf("%q with max depth %d: unexpected error %v", c.src, c.depth, err)
			}
			continue
		}
		want := &DepthError{Col: c.col, Max: c.depth}
		if !reflect.DeepEqual(err, want) {
			t.Errorf("%q with max depth %d: want %v, got %v", c.src, c.depth, want, err)
		}
	}
}

func TestExprNames(t *testing.T) {
	e := MustParse("a + f(b, a) - g() * f(c)")
	if got, want := e.Vars(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("wrong vars: want %q, got %q", want, got)
	}
	if got, want := e.Funcs(), []string{"f", "g"}; !reflect.DeepEqual(got, want) {
		t.Errorf("wrong funcs: want %q, got %q", want, got)
	}
	e.Vars()[0] = "z"
	if e.Vars()[0] != "a" {
		t.Error("Vars returned internal slice")
	}
	e = MustParse("1")
	if len(e.Vars()) != 0 || len(e.Funcs()) != 0 {
		t.Errorf("literal has names: %q %q", e.Vars(), e.Funcs())
	}
}

func TestWrite(t *testing.T) {
	cases := []struct {
		src  string
		q    QuoteStyle
		want string
	}{
		{"a+b*c", SingleQuote, "a + b * c"},
		{"(a+b)*c", SingleQuote, "(a + b) * c"},
		{"a-(b-c)", SingleQuote, "a - (b - c)"},
		{"(a-b)-c", SingleQuote, "a - b - c"},
		{"((a))", SingleQuote, "a"},
		{"-(a+b)", SingleQuote, "-(a + b)"},
		{"-(1)", SingleQuote, "-1"},
		{"- -a", SingleQuote, "--a"},
		{"not (a and b)", SingleQuote, "not (a and b)"},
		{"!a && b || c", SingleQuote, "not a and b or c"},
		{"a or (b or c)", SingleQuote, "a or (b or c)"},
		{"(a == b) == c", SingleQuote, "a == b == c"},
		{"x = 1", SingleQuote, "x == 1"},
		{"a * -b", SingleQuote, "a * -b"},
		{"f( 1 ,'s', g( ) )", SingleQuote, "f(1, 's', g())"},
		{"1.50 + 2.0", SingleQuote, "1.5 + 2.0"},
		{"TRUE or False", SingleQuote, "true or false"},
		{`name == "fred"`, SingleQuote, `name == 'fred'`},
		{`name == 'fred'`, DoubleQuote, `name == "fred"`},
		{`name == 'fred'`, EscapedSingleQuote, `name == \'fred\'`},
		{`name == 'fred'`, EscapedDoubleQuote, `name == \"fred\"`},
		{`"it's"`, SingleQuote, `"it's"`},
		{`'say "hi"'`, DoubleQuote, `'say "hi"'`},
	}
	for _, c := range cases {
		e, err := ParseString(c.src)
		if err != nil {
			t.Errorf("couldn't parse %q: %v", c.src, err)
			continue
		}
		got := e.Write(c.q)
		if got != c.want {
			t.Errorf("writing %q: want %s, got %s", c.src, c.want, got)
		}
		if c.q != SingleQuote && c.q != DoubleQuote {
			continue
		}
		f, err := ParseString(got)
		if err != nil {
			t.Errorf("couldn't parse written %q: %v", got, err)
			continue
		}
		if e.Dump(0) != f.Dump(0) {
			t.Errorf("%q wrote %q with different structure", c.src, got)
		}
	}
}

func TestMustParse(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustParse on bad input didn't panic")
		}
		if s, ok := r.(string); !ok || !strings.Contains(s, "1 +") {
			t.Errorf("unexpected panic value %#v", r)
		}
	}()
	MustParse("1 +")
}
