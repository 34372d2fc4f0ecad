package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "interactive session.",
	Long: `Read formulas line by line and print their simplified form.
	  x = 1/2            assign a variable
	  f(x, y) = x^2 + y  define a function
	  :eval formula      evaluate numerically
	  :diff x formula    differentiate with respect to x
	  :keep x,y formula  evaluate everything free of x and y
	  :vars              list assigned variables
	  :quit              leave the session`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := &session{cfg: setup(cmd)}
		//
		if term.IsTerminal(int(os.Stdin.Fd())) {
			if err := s.interactive(); err != nil {
				fail(err)
			}
			return
		}
		s.batch(os.Stdin, os.Stdout)
	},
}

var definitionPattern = regexp.MustCompile(`^([a-z][a-z0-9_]*)\(([^()]*)\)$`)

var errQuit = errors.New("quit")

type session struct {
	cfg symalg.Config
}

// interactive runs the session on a raw-mode terminal with line editing and
// history.
func (s *session) interactive() error {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() { _ = term.Restore(fd, state) }()
	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, "> ")
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	for {
		line, err := t.ReadLine()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		out, err := s.execute(context.Background(), line)
		if err == errQuit {
			return nil
		} else if err != nil {
			fmt.Fprintf(t, "%v\r\n", err)
		} else if out != "" {
			fmt.Fprintf(t, "%s\r\n", out)
		}
	}
}

// batch runs one statement per input line, as when stdin is piped.
func (s *session) batch(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		res, err := s.execute(context.Background(), scanner.Text())
		if err == errQuit {
			return
		} else if err != nil {
			fmt.Fprintln(out, err)
		} else if res != "" {
			fmt.Fprintln(out, res)
		}
	}
}

// execute runs one statement and returns the text to print.
func (s *session) execute(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", nil
	case line == ":quit" || line == ":q":
		return "", errQuit
	case line == ":vars":
		return s.variables(), nil
	case strings.HasPrefix(line, ":eval "):
		e, err := symalg.Build(strings.TrimPrefix(line, ":eval "), nil)
		if err != nil {
			return "", err
		}
		v, err := symalg.ReplaceDefinedVariables(e).Evaluate()
		if err != nil {
			return "", err
		}
		return fmt.Sprint(v), nil
	case strings.HasPrefix(line, ":keep "):
		names, formula, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, ":keep ")), " ")
		if !ok {
			return "", fmt.Errorf("usage: :keep var[,var...] formula")
		}
		e, err := symalg.Build(formula, nil)
		if err != nil {
			return "", err
		}
		return symalg.EvaluateExcept(e, strings.Split(names, ",")...).String(), nil
	case strings.HasPrefix(line, ":diff "):
		name, formula, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, ":diff ")), " ")
		if !ok {
			return "", fmt.Errorf("usage: :diff var formula")
		}
		e, err := symalg.Build(formula, nil)
		if err != nil {
			return "", err
		}
		d, err := symalg.Diff(e, name)
		if err != nil {
			return "", err
		}
		return s.simplify(ctx, d)
	case strings.HasPrefix(line, ":"):
		return "", fmt.Errorf("unknown command %s", strings.Fields(line)[0])
	}
	if lhs, rhs, ok := strings.Cut(line, "="); ok {
		return s.define(strings.Join(strings.Fields(lhs), ""), rhs)
	}
	e, err := symalg.Build(line, nil)
	if err != nil {
		return "", err
	}
	if e, err = symalg.ReplaceSelfDefinedFunctions(e); err != nil {
		return "", err
	}
	return s.simplify(ctx, symalg.ReplaceDefinedVariables(e))
}

func (s *session) simplify(ctx context.Context, e symalg.Expression) (string, error) {
	r, err := symalg.SimplifyWith(ctx, e, s.cfg)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// define handles both "name = value" and "f(a,b) = body".
func (s *session) define(lhs, rhs string) (string, error) {
	if m := definitionPattern.FindStringSubmatch(lhs); m != nil {
		var formals []string
		if m[2] != "" {
			formals = strings.Split(m[2], ",")
		}
		body, err := symalg.Build(rhs, nil)
		if err != nil {
			return "", err
		}
		if err := symalg.DefineFunction(m[1], formals, body); err != nil {
			return "", err
		}
		log.Debugf("defined %s(%s)", m[1], m[2])
		return fmt.Sprintf("%s(%s) = %s", m[1], strings.Join(formals, ","), body), nil
	}
	if err := assign(lhs, rhs); err != nil {
		return "", err
	}
	v, _ := symalg.VariableValue(lhs)
	return fmt.Sprintf("%s = %v", lhs, v), nil
}

func (s *session) variables() string {
	var lines []string
	for _, name := range symalg.RegisteredVariables() {
		if e, ok := symalg.PreciseExpression(name); ok {
			lines = append(lines, fmt.Sprintf("%s = %s", name, e))
		} else if v, ok := symalg.VariableValue(name); ok {
			lines = append(lines, fmt.Sprintf("%s = %v", name, v))
		}
	}
	return strings.Join(lines, "\n")
}
