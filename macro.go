package stackcalc

import (
	"strconv"
	"strings"
)

// ScopePolicy selects how the private table of a subroutine invocation relates
// to the table the subroutine was defined in.
type ScopePolicy int8

const (
	// ScopeChain makes each invocation's table a child of the defining table,
	// so the body sees the current values of every name visible there.
	ScopeChain ScopePolicy = iota
	// ScopeFilter gives each invocation a root table holding copies of only
	// the names the body refers to, including through other subroutines it
	// calls.
	ScopeFilter
	// ScopeCopy gives each invocation a root table holding copies of every
	// name visible from the defining table.
	ScopeCopy
)

func (p ScopePolicy) String() string {
	switch p {
	case ScopeChain:
		return "chain"
	case ScopeFilter:
		return "filter"
	case ScopeCopy:
		return "copy"
	default:
		return "ScopePolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseScope parses the name of a scope policy.
func ParseScope(s string) (ScopePolicy, error) {
	switch s {
	case "chain", "":
		return ScopeChain, nil
	case "filter":
		return ScopeFilter, nil
	case "copy":
		return ScopeCopy, nil
	default:
		return 0, syntaxError("unknown scope policy", s)
	}
}

// Subroutine is a user-defined function: a parameter list and a token body.
// Each invocation evaluates the body with a fresh engine over a private
// table, so concurrent and recursive invocations never observe each other's
// parameter bindings.
type Subroutine[T any] struct {
	Name   string
	Params []string
	Body   []Token
	// Suppress makes the subroutine return an undefined value in place of
	// a suppressible error from its body.
	Suppress bool

	// scope is the table the subroutine was defined in.
	scope *SymbolTable[T]
	// refs are the names the body refers to, computed on first use under
	// ScopeFilter.
	refs    []string
	scanned bool
}

// Profile formats the subroutine's definition.
func (m *Subroutine[T]) Profile() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(m.Params, ", "))
	b.WriteString(") =")
	for _, tok := range m.Body {
		b.WriteByte(' ')
		if tok.Kind == TokenSeq {
			b.WriteString("{" + tok.Text + "}")
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Run invokes the subroutine from e with arg as its argument list.
func (m *Subroutine[T]) Run(e *Engine[T], arg Value[T]) (Value[T], error) {
	if e.depth >= e.env.maxDepth {
		return m.fail(&Error{Kind: KindDomain, Msg: "recursion depth exceeded in", Name: m.Name})
	}
	args, err := m.bind(arg)
	if err != nil {
		return m.fail(err)
	}
	table := m.fork(e.env.scope)
	for i, p := range m.Params {
		table.Add(&Entry[T]{Name: p, Kind: EntryVariable, Value: args[i]})
	}
	r, err := newEngine(e.env, table, e.depth+1).Run(m.Body)
	if err != nil {
		return m.fail(err)
	}
	return r, nil
}

// fail is the subroutine's error boundary.
func (m *Subroutine[T]) fail(err error) (Value[T], error) {
	if m.Suppress && Suppressible(err) {
		return Undef[T](m.Name), nil
	}
	return Value[T]{}, err
}

// bind splits an argument list into one value per parameter.
func (m *Subroutine[T]) bind(arg Value[T]) ([]Value[T], error) {
	var args []Value[T]
	switch {
	case arg.Kind == ValueList && len(arg.Items) != 1:
		args = arg.Items
	case arg.Kind == ValueList:
		args = []Value[T]{arg.Items[0]}
	default:
		args = []Value[T]{arg}
	}
	if len(args) != len(m.Params) {
		return nil, &Error{
			Kind: KindSymbol,
			Msg:  "wrong number of arguments (want " + strconv.Itoa(len(m.Params)) + ", have " + strconv.Itoa(len(args)) + ") for",
			Name: m.Name,
		}
	}
	r := make([]Value[T], len(args))
	for i, v := range args {
		r[i] = consolidate(v)
	}
	return r, nil
}

// fork creates the private table for one invocation.
func (m *Subroutine[T]) fork(policy ScopePolicy) *SymbolTable[T] {
	switch policy {
	case ScopeFilter:
		t := NewSymbolTable[T](nil)
		for _, name := range m.references() {
			t.Import(m.scope, name)
		}
		return t
	case ScopeCopy:
		t := NewSymbolTable[T](nil)
		for _, name := range m.scope.Names() {
			t.Import(m.scope, name)
		}
		return t
	default:
		return m.scope.Fork()
	}
}

// references returns the names the body may look up.
func (m *Subroutine[T]) references() []string {
	if !m.scanned {
		// Implicit multiplication looks up * without a token.
		seen := map[string]bool{"*": true}
		m.scan(seen)
		m.refs = make([]string, 0, len(seen))
		for name := range seen {
			m.refs = append(m.refs, name)
		}
		sortstrs(m.refs)
		m.scanned = true
	}
	return m.refs
}

func (m *Subroutine[T]) scan(seen map[string]bool) {
	for _, tok := range m.Body {
		if tok.Kind != TokenIdent && tok.Kind != TokenOp {
			continue
		}
		name := tok.Text
		if base, _, ok := conventionName(name); ok {
			name = base
		}
		for _, n := range []string{name, name + "'", name + "''", name + "~"} {
			if seen[n] {
				continue
			}
			seen[n] = true
			if ent, ok := m.scope.Lookup(n); ok && ent.Kind == EntrySubroutine && ent.Sub != m {
				ent.Sub.scan(seen)
			}
		}
	}
}

// operation creates the operation which invokes the subroutine.
func (m *Subroutine[T]) operation() *Operation[T] {
	return &Operation[T]{
		Name:     m.Name,
		Kind:     OpCall,
		Prec:     PrecCall,
		Calculus: true,
		Call:     m.Run,
	}
}

// define handles def name(params) = body. The rest of the statement is the
// body, which is stored unevaluated.
func (e *Engine[T]) define() error {
	toks := e.toks[e.next:]
	e.next = len(e.toks)
	e.expect = 0
	m, err := parseProfile[T](toks)
	if err != nil {
		return err
	}
	if ent, ok := e.table.Lookup(m.Name); ok && ent.Kind == EntryOperation {
		return symbolError("cannot redefine operation", m.Name)
	}
	m.scope = e.table
	e.table.Add(&Entry[T]{Name: m.Name, Kind: EntrySubroutine, Op: m.operation(), Sub: m})
	e.result = Value[T]{}
	return nil
}

// parseProfile parses name(params) = body.
func parseProfile[T any](toks []Token) (*Subroutine[T], error) {
	if len(toks) < 4 || toks[0].Kind != TokenIdent || toks[1].Text != "(" {
		return nil, syntaxError("want name(parameters) = body after", "def")
	}
	name := toks[0].Text
	if _, _, ok := conventionName(name); ok {
		return nil, syntaxError("subroutine name cannot end with ' or ~:", name)
	}
	var params []string
	i := 2
	for ; i < len(toks) && toks[i].Text != ")"; i++ {
		if len(params) > 0 {
			if toks[i].Text != "," {
				return nil, &Error{Kind: KindSyntax, Msg: "want , or ) in parameters, not", Name: toks[i].Text, Col: toks[i].Pos}
			}
			i++
			if i >= len(toks) {
				break
			}
		}
		tok := toks[i]
		if tok.Kind != TokenIdent {
			return nil, &Error{Kind: KindSyntax, Msg: "invalid parameter", Name: tok.Text, Col: tok.Pos}
		}
		for _, p := range params {
			if p == tok.Text {
				return nil, &Error{Kind: KindSyntax, Msg: "duplicate parameter", Name: tok.Text, Col: tok.Pos}
			}
		}
		params = append(params, tok.Text)
	}
	if i >= len(toks) {
		return nil, syntaxError("unclosed parameter list for", name)
	}
	i++
	if i >= len(toks) || toks[i].Text != "=" {
		return nil, syntaxError("want = after parameters of", name)
	}
	body := toks[i+1:]
	if len(body) == 0 {
		return nil, syntaxError("empty body for", name)
	}
	return &Subroutine[T]{Name: name, Params: params, Body: body}, nil
}
