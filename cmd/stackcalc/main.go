package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/zephyrtronium/stackcalc"
)

func main() {
	log.SetFlags(0)
	var (
		cfgname, inname, arith string
		with                   [][2]string
		prec                   int
		trace, echo            bool
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&cfgname, "config", "", "YAML configuration file")
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&arith, "arith", "float64", "element type: float64 or big")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", 64, "precision of big calculations in bits")
	flag.BoolVar(&trace, "trace", false, "log each executed operator to stderr")
	flag.BoolVar(&echo, "echo", false, "print each statement before its result")
	flag.Parse()

	cfg, err := loadConfig(cfgname)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arith":
			cfg.Arith = arith
		case "p":
			cfg.Prec = uint(prec)
		case "trace":
			cfg.Trace = trace
		}
	})
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}
	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}

	opts := cfg.options()
	if cfg.Trace {
		opts = append(opts, stackcalc.Trace(log.New(os.Stderr, "trace: ", 0)))
	}
	givens := givenList(cfg.Given, with)
	r := runner{inname: inname, args: flag.Args(), echo: echo, out: os.Stdout}
	switch cfg.Arith {
	case "big":
		err = run[*big.Float](r, stackcalc.NewEnv[*big.Float](stackcalc.BigFloat{Prec: cfg.Prec}, opts...), givens, cfg.Prelude)
	default:
		err = run[float64](r, stackcalc.NewEnv[float64](stackcalc.Float64{}, opts...), givens, cfg.Prelude)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// givenList orders variable definitions: those from the configuration file
// sorted by name, then those from flags in order.
func givenList(cfg map[string]string, with [][2]string) [][2]string {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	r := make([][2]string, 0, len(cfg)+len(with))
	for _, name := range names {
		r = append(r, [2]string{name, cfg[name]})
	}
	return append(r, with...)
}

// runner holds where statements come from and where results go.
type runner struct {
	inname string
	args   []string
	echo   bool
	out    io.Writer
}

func run[T any](r runner, env *stackcalc.Env[T], given [][2]string, prelude []string) error {
	for _, d := range given {
		v, err := env.EvalString(d[1])
		if err != nil {
			return errors.Wrapf(err, "setting %s", d[0])
		}
		env.Set(d[0], v)
	}
	for _, stmt := range prelude {
		if _, err := env.EvalString(stmt); err != nil {
			return errors.Wrapf(err, "prelude %q", stmt)
		}
	}

	if len(r.args) > 0 && r.inname == "" {
		for _, stmt := range r.args {
			if evalLine(r.out, env, stmt, r.echo) {
				break
			}
		}
		return nil
	}
	f, err := infile(r.inname)
	if err != nil {
		return err
	}
	if f == nil {
		return repl(env, r.echo)
	}
	defer f.Close()
	return batch(r.out, env, f, r.echo)
}

// infile opens the named input, or returns stdin if it is not a terminal.
// The result is nil if input should be interactive.
func infile(inname string) (*os.File, error) {
	switch inname {
	case "":
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil
		}
		return os.Stdin, nil
	case "-":
		return os.Stdin, nil
	default:
		f, err := os.Open(inname)
		return f, errors.Wrap(err, "opening input")
	}
}

// batch evaluates each line of in. It stops early if a statement terminates.
func batch[T any](w io.Writer, env *stackcalc.Env[T], in io.Reader, echo bool) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if evalLine(w, env, line, echo) {
			return nil
		}
	}
	return errors.Wrap(sc.Err(), "reading input")
}

// evalLine evaluates a statement and prints its result or error. The result
// is true if the statement raised a termination.
func evalLine[T any](w io.Writer, env *stackcalc.Env[T], line string, echo bool) bool {
	if echo {
		fmt.Fprintf(w, "%s : ", line)
	}
	v, err := env.EvalString(line)
	if err != nil {
		fmt.Fprintln(w, err)
		return stackcalc.KindOf(err) == stackcalc.KindTermination
	}
	if v.Kind != stackcalc.ValueNone {
		fmt.Fprintln(w, env.Format(v))
	} else if echo {
		fmt.Fprintln(w)
	}
	return false
}
