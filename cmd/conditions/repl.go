package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/conditions"
)

const (
	historyFile = ".conditions_history"
	promptMain  = "? "
	promptCont  = ". "
)

// repl evaluates expressions interactively. Lines are joined until they form
// a complete expression. Commands begin with a colon:
//
//	:quit              exit
//	:set name expr     evaluate expr and bind it to name
//	:trace             toggle printing evaluation steps
//	:dump              toggle printing parse trees
func repl(ctx *conditions.Context, opts options, stdout, stderr io.Writer) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readByParseProbe(ln, opts.parse, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(stdout)
			return nil
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(code, ":") {
			if command(ctx, &opts, code, stdout, stderr) {
				return nil
			}
			continue
		}

		a, err := conditions.ParseString(code, opts.parse...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		evalPrint(ctx, a, opts, stdout)
	}
}

// command runs a REPL command. Returns true if the session should end.
func command(ctx *conditions.Context, opts *options, code string, stdout, stderr io.Writer) bool {
	cmd, arg, _ := strings.Cut(code, " ")
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":trace":
		opts.trace = !opts.trace
		fmt.Fprintln(stdout, "trace:", opts.trace)
	case ":dump":
		opts.dump = !opts.dump
		fmt.Fprintln(stdout, "dump:", opts.dump)
	case ":set":
		name, src, _ := strings.Cut(strings.TrimSpace(arg), " ")
		if name == "" || strings.TrimSpace(src) == "" {
			fmt.Fprintln(stderr, "usage: :set name expr")
			break
		}
		a, err := conditions.ParseString(src, opts.parse...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			break
		}
		r, err := a.Eval(ctx, nil)
		if err != nil {
			fmt.Fprintln(stderr, err)
			break
		}
		ctx.Set(name, r)
		fmt.Fprintf(stdout, "%s = %s\n", name, r.GoString())
	default:
		fmt.Fprintln(stderr, "unknown command. Type :quit to exit.")
	}
	return false
}

// readByParseProbe reads lines until they parse or fail for a reason other
// than ending too soon.
func readByParseProbe(ln *liner.State, popts []conditions.ParseOption, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || strings.TrimSpace(src) == "" {
			return src, true
		}
		_, perr := conditions.ParseString(src, popts...)
		if perr == nil || !conditions.IsIncomplete(perr) {
			return src, true
		}
	}
}
