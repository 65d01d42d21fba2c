package stackcalc

import (
	"io"
	"log"
	"strings"
)

// Env is an evaluation environment: a type manager, a global symbol table,
// and evaluation settings. It is not safe to use an Env concurrently. Use
// Clone to give each goroutine its own.
type Env[T any] struct {
	arith    Arith[T]
	global   *SymbolTable[T]
	maxDepth int
	scope    ScopePolicy
	fill     float64
	trace    *log.Logger
}

// Option is an option used when creating an environment.
type Option interface {
	envOption()
}

type (
	depthopt int
	scopeopt ScopePolicy
	fillopt  float64
	traceopt struct {
		l *log.Logger
	}
	varopt struct {
		name string
		val  float64
	}
	varsopt map[string]float64
)

func (depthopt) envOption() {}
func (scopeopt) envOption() {}
func (fillopt) envOption()  {}
func (traceopt) envOption() {}
func (varopt) envOption()   {}
func (varsopt) envOption()  {}

// MaxDepth sets the maximum nesting depth of subroutine calls. The default
// is 256.
func MaxDepth(n int) Option {
	return depthopt(n)
}

// Scope sets the scope policy for subroutine invocations. The default is
// ScopeChain.
func Scope(p ScopePolicy) Option {
	return scopeopt(p)
}

// Fill sets the value which fills the gap when indexed assignment grows an
// array. The default is 0.
func Fill(x float64) Option {
	return fillopt(x)
}

// Trace logs each executed operator to l. A nil logger disables tracing.
func Trace(l *log.Logger) Option {
	return traceopt{l}
}

// SetVar sets the value of a variable in the environment.
func SetVar(name string, val float64) Option {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the environment.
func SetVars(vars map[string]float64) Option {
	return varsopt(vars)
}

// NewEnv creates an environment computing with a. The global table starts
// with the builtin operations and constants.
func NewEnv[T any](a Arith[T], opts ...Option) *Env[T] {
	env := Env[T]{arith: a, global: NewSymbolTable[T](nil), maxDepth: 256}
	for _, ent := range builtins(a) {
		env.global.Add(ent)
	}
	return env.Clone(opts...)
}

// Clone creates a copy of an environment and applies options to it. The
// copy's global table holds the same entries as env's, and later bindings
// in either are not visible in the other.
func (env *Env[T]) Clone(opts ...Option) *Env[T] {
	n := Env[T]{
		arith:    env.arith,
		global:   NewSymbolTable[T](nil),
		maxDepth: env.maxDepth,
		scope:    env.scope,
		fill:     env.fill,
		trace:    env.trace,
	}
	for _, name := range env.global.Names() {
		n.global.Import(env.global, name)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case depthopt:
			n.maxDepth = int(opt)
		case scopeopt:
			n.scope = ScopePolicy(opt)
		case fillopt:
			n.fill = float64(opt)
		case traceopt:
			n.trace = opt.l
		case varopt:
			n.Set(opt.name, Scalar(n.arith.FromFloat64(opt.val)))
		case varsopt:
			for k, v := range opt {
				n.Set(k, Scalar(n.arith.FromFloat64(v)))
			}
		default:
			panic("stackcalc: unknown option type")
		}
	}
	return &n
}

// Eval evaluates one statement.
func (env *Env[T]) Eval(toks []Token) (Value[T], error) {
	return newEngine(env, env.global, 0).Run(toks)
}

// EvalString tokenizes and evaluates one statement.
func (env *Env[T]) EvalString(src string) (Value[T], error) {
	toks, err := TokenizeString(src)
	if err != nil {
		return Value[T]{}, err
	}
	return env.Eval(toks)
}

// Exec evaluates each line of src as a statement, stopping at the first
// error. Blank lines and lines starting with # are skipped.
func (env *Env[T]) Exec(src io.Reader) error {
	b := new(strings.Builder)
	if _, err := io.Copy(b, src); err != nil {
		return err
	}
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := env.EvalString(line); err != nil {
			return err
		}
	}
	return nil
}

// Set binds a variable in the global table.
func (env *Env[T]) Set(name string, v Value[T]) *Env[T] {
	env.global.Add(&Entry[T]{Name: name, Kind: EntryVariable, Value: v})
	return env
}

// Lookup returns the value of a variable. The result is false if there is
// no such variable.
func (env *Env[T]) Lookup(name string) (Value[T], bool) {
	ent, ok := env.global.Lookup(name)
	if !ok || ent.Kind != EntryVariable || ent.Value.Kind == ValueUndefined {
		return Value[T]{}, false
	}
	return ent.Value, true
}

// Symbols returns the global entries of the given kinds, or of all kinds if
// none are given, sorted by name.
func (env *Env[T]) Symbols(kinds ...EntryKind) []*Entry[T] {
	return env.global.Entries(kinds...)
}

// Table returns the global symbol table.
func (env *Env[T]) Table() *SymbolTable[T] {
	return env.global
}

// Arith returns the environment's type manager.
func (env *Env[T]) Arith() Arith[T] {
	return env.arith
}

// Format formats a value with the environment's type manager, titled by its
// metadata if it has any.
func (env *Env[T]) Format(v Value[T]) string {
	s := v.Format(env.arith)
	if v.Meta != nil {
		s = v.Meta.Describe(env.arith) + ": " + s
	}
	return s
}

// EvalString is a shortcut to evaluate a statement in a new float64
// environment.
func EvalString(src string, opts ...Option) (Value[float64], error) {
	return NewEnv[float64](Float64{}, opts...).EvalString(src)
}
