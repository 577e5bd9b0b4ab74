package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/zephyrtronium/conditions"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the settings that affect how each expression is handled.
type options struct {
	echo  bool
	dump  bool
	trace bool
	quote conditions.QuoteStyle
	parse []conditions.ParseOption
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("conditions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		inname, varsname, quote string
		with                    [][2]string
		nl, math, strs          bool
		interactive, verbose    bool
		maxdepth                int
		opts                    options
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	fs.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	fs.Func("given", "name=value variable definition, value is an expression (any number of times)", addwith)
	fs.StringVar(&varsname, "vars", "", "YAML or JSON file of variables")
	fs.BoolVar(&math, "math", true, "provide math functions")
	fs.BoolVar(&strs, "strings", true, "provide string functions")
	fs.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	fs.IntVar(&maxdepth, "maxdepth", 0, "maximum nesting depth of expressions (0 for no limit)")
	fs.BoolVar(&opts.echo, "echo", false, "print each expression before its result")
	fs.StringVar(&quote, "quote", "single", "quote style for -echo: single, double, esingle, or edouble")
	fs.BoolVar(&opts.dump, "dump", false, "print parse trees")
	fs.BoolVar(&opts.trace, "trace", false, "print evaluation steps")
	fs.BoolVar(&interactive, "i", false, "start an interactive session")
	fs.BoolVar(&verbose, "v", false, "log debug information")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	q, err := quoteStyle(quote)
	if err != nil {
		logger.Error("bad flag", "flag", "quote", "error", err)
		return 2
	}
	opts.quote = q
	if nl {
		opts.parse = append(opts.parse, conditions.StopOn('\n'))
	}
	if maxdepth > 0 {
		opts.parse = append(opts.parse, conditions.MaxDepth(maxdepth))
	}

	ctx := conditions.NewContext()
	if math {
		ctx = ctx.Clone(conditions.SetFuncs(conditions.MathFuncs()))
	}
	if strs {
		ctx = ctx.Clone(conditions.SetFuncs(conditions.StringFuncs()))
	}
	if varsname != "" {
		vars, err := loadVars(varsname)
		if err != nil {
			logger.Error("loading variables", "path", varsname, "error", err)
			return 1
		}
		ctx = ctx.Clone(conditions.SetVars(vars))
		logger.Debug("loaded variables", "path", varsname, "count", len(vars))
	}
	for _, d := range with {
		nm, vl := d[0], d[1]
		r, err := conditions.EvalString(vl)
		if err != nil {
			logger.Error("setting variable", "name", nm, "error", err)
			return 1
		}
		ctx.Set(nm, r)
		logger.Debug("set variable", "name", nm, "value", r.GoString())
	}

	if interactive {
		if err := repl(ctx, opts, stdout, stderr); err != nil {
			logger.Error("interactive session", "error", err)
			return 1
		}
		return 0
	}

	var ins []io.RuneScanner
	if f, err := infile(inname, fs.NArg() == 0, stdin); err != nil {
		logger.Error("opening input", "path", inname, "error", err)
		return 1
	} else if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range fs.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	var p []*conditions.Expr
	for _, in := range ins {
		for {
			// First check whether we're done with the input.
			if err := skipSpace(in); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				logger.Error("reading input", "error", err)
				return 1
			}
			a, err := conditions.Parse(in, opts.parse...)
			if err != nil {
				logger.Error("parsing", "error", err, "incomplete", conditions.IsIncomplete(err))
				return 1
			}
			logger.Debug("parsed", "expr", a.String(), "vars", a.Vars(), "funcs", a.Funcs())
			p = append(p, a)
		}
	}

	status := 0
	for _, a := range p {
		if !evalPrint(ctx, a, opts, stdout) {
			status = 1
		}
	}
	return status
}

// evalPrint evaluates an expression and prints its result or error, along
// with whatever else the options request. Returns false if evaluation failed.
func evalPrint(ctx *conditions.Context, a *conditions.Expr, opts options, w io.Writer) bool {
	if opts.echo {
		fmt.Fprintf(w, "%s : ", a.Write(opts.quote))
	}
	var trace *conditions.Trace
	if opts.trace {
		trace = new(conditions.Trace)
	}
	r, err := a.Eval(ctx, trace)
	if err != nil {
		fmt.Fprintln(w, err)
	} else {
		fmt.Fprintln(w, r.GoString())
	}
	if opts.dump {
		fmt.Fprint(w, a.Dump(1))
	}
	if trace != nil {
		for _, line := range trace.Lines() {
			fmt.Fprintln(w, "  "+line)
		}
	}
	return err == nil
}

func quoteStyle(s string) (conditions.QuoteStyle, error) {
	switch strings.ToLower(s) {
	case "single", "s":
		return conditions.SingleQuote, nil
	case "double", "d":
		return conditions.DoubleQuote, nil
	case "esingle", "es":
		return conditions.EscapedSingleQuote, nil
	case "edouble", "ed":
		return conditions.EscapedDoubleQuote, nil
	default:
		return 0, fmt.Errorf("unknown quote style %q", s)
	}
}

// skipSpace consumes whitespace so that trailing blank lines don't count as
// empty expressions.
func skipSpace(in io.RuneScanner) error {
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(r) {
			return in.UnreadRune()
		}
	}
}

func infile(inname string, std bool, stdin io.Reader) (io.RuneScanner, error) {
	var f io.Reader
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
