package stackcalc

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Engine evaluates one token sequence against a symbol table. Parsing and
// execution are a single pass: operands are pushed to a value stack as they
// are scanned, and operators wait on an operator stack until an operator of
// lower or equal precedence forces them to execute.
//
// An Engine is used for a single evaluation and is not safe for concurrent
// use. Subroutine calls and array generation evaluate with fresh engines.
type Engine[T any] struct {
	env   *Env[T]
	arith Arith[T]
	table *SymbolTable[T]
	// depth is the subroutine nesting depth.
	depth int

	values valueStack[T]
	ops    opStack[T]

	toks []Token
	// next is the index of the next token to scan.
	next int

	// assign is set while an assignment is waiting for its target name.
	assign bool
	// opLast is set when the last token scanned was an operator, i.e. there
	// is no operand to the left of the next token.
	opLast bool
	// expect is the number of values the statement leaves on the stack.
	expect int
	// result is the result of a statement which leaves no values.
	result Value[T]
}

func newEngine[T any](env *Env[T], table *SymbolTable[T], depth int) *Engine[T] {
	return &Engine[T]{
		env:   env,
		arith: env.arith,
		table: table,
		depth: depth,
		ops:   newOpStack[T](),
	}
}

// Arith returns the type manager the engine computes with.
func (e *Engine[T]) Arith() Arith[T] {
	return e.arith
}

// Table returns the symbol table the engine evaluates against.
func (e *Engine[T]) Table() *SymbolTable[T] {
	return e.table
}

// Run evaluates a complete statement and returns its result.
func (e *Engine[T]) Run(toks []Token) (r Value[T], err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		nan, ok := p.(big.ErrNaN)
		if !ok {
			panic(p)
		}
		r, err = Value[T]{}, &Error{Kind: KindDomain, Msg: "undefined result", Err: nan}
	}()
	if len(toks) == 0 {
		return Value[T]{}, syntaxError("no expression", "")
	}
	e.toks, e.next, e.opLast, e.expect = toks, 0, true, 1
	for e.next < len(e.toks) {
		tok := e.toks[e.next]
		e.next++
		if err := e.step(tok); err != nil {
			return Value[T]{}, at(err, tok.Pos)
		}
	}
	if e.assign {
		return Value[T]{}, syntaxError("assignment has no target", "let")
	}
	if err := e.flushAll(); err != nil {
		return Value[T]{}, err
	}
	if len(e.values) != e.expect {
		return Value[T]{}, stackError(strconv.Itoa(len(e.values))+" values left, want "+strconv.Itoa(e.expect), "")
	}
	if e.expect == 0 {
		return e.result, nil
	}
	r, _ = e.values.pop()
	if r.Kind == ValueUndefined {
		return Value[T]{}, symbolError("undefined", r.Name)
	}
	return r, nil
}

// step scans one token.
func (e *Engine[T]) step(tok Token) error {
	if e.assign {
		return e.target(tok)
	}
	switch tok.Kind {
	case TokenInt, TokenFloat, TokenDecimal:
		x, err := e.arith.Parse(tok.Text)
		if err != nil {
			return &Error{Kind: KindSyntax, Msg: "invalid literal", Name: tok.Text, Err: err}
		}
		return e.operand(Scalar(x))
	case TokenSeq:
		v, err := e.sequence(tok.Text)
		if err != nil {
			return err
		}
		return e.operand(v)
	case TokenIdent, TokenOp:
		return e.symbol(tok)
	default:
		return syntaxError("invalid token", tok.String())
	}
}

// target captures the name following an assignment start.
func (e *Engine[T]) target(tok Token) error {
	e.assign = false
	if tok.Kind != TokenIdent {
		return symbolError("invalid assignment target", tok.Text)
	}
	if ent, ok := e.table.Lookup(tok.Text); ok && ent.Kind != EntryVariable {
		return symbolError("invalid assignment target: "+ent.Kind.String(), tok.Text)
	}
	e.values.push(Value[T]{Kind: valueTarget, Name: tok.Text})
	e.opLast = false
	return nil
}

// operand pushes a value. A value directly following another is an implicit
// multiplication.
func (e *Engine[T]) operand(v Value[T]) error {
	if !e.opLast {
		if err := e.implicit(); err != nil {
			return err
		}
	}
	e.values.push(v)
	e.opLast = false
	return nil
}

func (e *Engine[T]) implicit() error {
	ent, ok := e.table.Lookup("*")
	if !ok || ent.Kind != EntryOperation {
		return symbolError("unknown operator", "*")
	}
	return e.operator(ent.Op, Token{Kind: TokenOp, Text: "*"})
}

// symbol resolves a name or operator token and handles it.
func (e *Engine[T]) symbol(tok Token) error {
	ent, ok := e.table.Lookup(tok.Text)
	if !ok {
		if tok.Kind == TokenOp {
			return symbolError("unknown operator", tok.Text)
		}
		var err error
		ent, err = e.resolve(tok.Text)
		if err != nil {
			return err
		}
	}
	if ent.Kind == EntryVariable {
		return e.operand(ent.Value)
	}
	if ent.Op == nil {
		return symbolError("not an operation", tok.Text)
	}
	return e.operator(ent.Op, tok)
}

// resolve finds an entry for a name with no binding. Derivative and
// antiderivative names of transforms are constructed; anything else becomes a
// reusable undefined placeholder.
func (e *Engine[T]) resolve(name string) (*Entry[T], error) {
	if base, order, ok := conventionName(name); ok {
		if _, found := e.table.Lookup(base); found {
			return e.symbolic(base, order)
		}
	}
	ent := &Entry[T]{Name: name, Kind: EntryVariable, Value: Undef[T](name)}
	e.table.Add(ent)
	return ent, nil
}

// operator handles an operator token.
func (e *Engine[T]) operator(op *Operation[T], tok Token) error {
	ent := opEntry[T]{op: op, prec: op.Prec, right: op.Right, pos: tok.Pos}
	switch op.Kind {
	case OpAssignStart:
		if e.next != 1 {
			return syntaxError("assignment must begin a statement", op.Name)
		}
		e.assign = true
		e.expect = 0
		e.opLast = true
	case OpStore:
		if e.opLast {
			return syntaxError("missing assignment target before", op.Name)
		}
		if err := e.flush(op.Prec, false); err != nil {
			return err
		}
		e.ops.push(ent)
		e.opLast = true
	case OpGroupOpen:
		if !e.opLast {
			if err := e.implicit(); err != nil {
				return err
			}
		}
		ent.marker, ent.depth = true, len(e.values)
		e.ops.push(ent)
		e.opLast = true
	case OpArrayOpen:
		if e.opLast {
			return e.array(ent)
		}
		// Indexing the value to the left. A call's argument group binds to
		// the call before the index does.
		if e.next >= 2 && e.toks[e.next-2].Kind == TokenOp && e.toks[e.next-2].Text == ")" {
			if err := e.flush(PrecCall, false); err != nil {
				return err
			}
		}
		ent.marker, ent.index, ent.depth = true, true, len(e.values)
		e.ops.push(ent)
		e.opLast = true
	case OpContinue:
		if e.opLast {
			return syntaxError("empty expression before", op.Name)
		}
		m, err := e.flushGroup(op.Name)
		if err != nil {
			return err
		}
		m.items++
		e.opLast = true
	case OpGroupClose, OpArrayClose:
		return e.closeGroup(op)
	case OpBinary:
		if e.opLast {
			// No left operand, so this is a unary use: 0 - x.
			e.values.push(Scalar(e.arith.Zero()))
			ent.prec, ent.right = PrecUnary, true
		} else if err := e.flush(op.Prec, op.Right); err != nil {
			return err
		}
		e.ops.push(ent)
		e.opLast = true
	case OpUnary, OpCall:
		if !e.opLast {
			if err := e.implicit(); err != nil {
				return err
			}
		}
		e.ops.push(ent)
		e.opLast = true
	case OpPostfix:
		if e.opLast {
			return syntaxError("missing operand for", op.Name)
		}
		if err := e.flush(op.Prec, false); err != nil {
			return err
		}
		return e.execute(ent)
	case OpDefine:
		if e.next != 1 {
			return syntaxError("definition must begin a statement", op.Name)
		}
		return e.define()
	case OpDeclare:
		if e.next != 1 {
			return syntaxError("declaration must begin a statement", op.Name)
		}
		return e.declare(op)
	case OpConditional:
		if !e.opLast {
			if err := e.implicit(); err != nil {
				return err
			}
		}
		v, err := e.conditional()
		if err != nil {
			return err
		}
		e.values.push(v)
		e.opLast = false
	default:
		return symbolError("cannot evaluate", op.Name)
	}
	return nil
}

// flush executes waiting operators which bind at least as tightly as an
// incoming operator of the given precedence.
func (e *Engine[T]) flush(prec Prec, right bool) error {
	for {
		top := e.ops.top()
		if top.op == nil || top.marker {
			return nil
		}
		if top.prec < prec || top.prec == prec && right {
			return nil
		}
		ent, err := e.ops.pop()
		if err != nil {
			return err
		}
		if err := e.execute(ent); err != nil {
			return err
		}
	}
}

// flushGroup executes operators back to the innermost group marker and
// returns the marker.
func (e *Engine[T]) flushGroup(name string) (*opEntry[T], error) {
	for {
		top := e.ops.top()
		if top.marker {
			return top, nil
		}
		if top.op == nil {
			return nil, stackError("unbalanced group at", name)
		}
		ent, err := e.ops.pop()
		if err != nil {
			return nil, err
		}
		if err := e.execute(ent); err != nil {
			return nil, err
		}
	}
}

// flushAll executes every waiting operator at the end of a statement.
func (e *Engine[T]) flushAll() error {
	for !e.ops.terminated() {
		ent, err := e.ops.pop()
		if err != nil {
			return err
		}
		if ent.marker {
			return &Error{Kind: KindStack, Msg: "unbalanced group: unclosed", Name: ent.op.Name, Col: ent.pos}
		}
		if err := e.execute(ent); err != nil {
			return err
		}
	}
	return nil
}

// closeGroup handles a closing bracket.
func (e *Engine[T]) closeGroup(op *Operation[T]) error {
	if e.opLast {
		// Only an immediately closed group, like f(), may be empty.
		top := e.ops.top()
		if !top.marker || top.items != 0 || len(e.values) != top.depth {
			return syntaxError("empty expression before", op.Name)
		}
	}
	if _, err := e.flushGroup(op.Name); err != nil {
		return err
	}
	m, err := e.ops.pop()
	if err != nil {
		return err
	}
	want := OpGroupOpen
	if op.Kind == OpArrayClose {
		want = OpArrayOpen
	}
	if m.op.Kind != want {
		return stackError("mismatched group "+m.op.Name+" closed by", op.Name)
	}
	items := make([]Value[T], len(e.values)-m.depth)
	copy(items, e.values[m.depth:])
	for len(e.values) > m.depth {
		e.values.pop()
	}
	var v Value[T]
	switch {
	case m.index:
		if len(items) != 1 {
			return syntaxError("index must be a single expression", "")
		}
		base, err := e.values.pop()
		if err != nil {
			return err
		}
		if base.Kind == valueTarget {
			// Leave the index beneath the target for the store.
			idx := consolidate(items[0])
			if idx.Kind != ValueDiscrete {
				return domainError("index", idx.Format(e.arith))
			}
			e.values.push(Value[T]{Kind: valueIndex, Num: idx.Num})
			e.values.push(base)
			e.opLast = false
			return nil
		}
		v, err = e.element(base, items[0])
		if err != nil {
			return err
		}
	case want == OpArrayOpen:
		v = literal(items)
	case len(items) == 1 && m.items == 0:
		v = items[0]
	default:
		v = Tuple(items...)
	}
	e.values.push(v)
	e.opLast = false
	return nil
}

// literal builds the value of an array literal.
func literal[T any](items []Value[T]) Value[T] {
	xs := make([]T, 0, len(items))
	for _, it := range items {
		it = consolidate(it)
		switch it.Kind {
		case ValueDiscrete:
			xs = append(xs, it.Num)
		case ValueDimensioned:
			xs = append(xs, it.Dims...)
		default:
			return Tuple(items...)
		}
	}
	return Array(xs)
}

// array handles an array opener in operand position, which begins either an
// array literal or an array descriptor.
func (e *Engine[T]) array(ent opEntry[T]) error {
	end, err := e.match(e.next - 1)
	if err != nil {
		return err
	}
	inner := e.toks[e.next:end]
	if !isDescriptor(inner) {
		ent.marker, ent.depth = true, len(e.values)
		e.ops.push(ent)
		e.opLast = true
		return nil
	}
	if end+1 >= len(e.toks) || e.toks[end+1].Text != "(" {
		return syntaxError("array descriptor requires an element expression", "")
	}
	close, err := e.match(end + 1)
	if err != nil {
		return err
	}
	d, err := e.descriptor(inner, e.toks[end+2:close])
	if err != nil {
		return err
	}
	e.next = close + 1
	v, err := d.Generate(e)
	if err != nil {
		return err
	}
	return e.operand(v)
}

// match finds the index of the bracket closing the one at toks[i].
func (e *Engine[T]) match(i int) (int, error) {
	var open []string
	for j := i; j < len(e.toks); j++ {
		tok := e.toks[j]
		if tok.Kind != TokenOp {
			continue
		}
		switch tok.Text {
		case "(", "[":
			open = append(open, tok.Text)
		case ")", "]":
			want := "("
			if tok.Text == "]" {
				want = "["
			}
			if open[len(open)-1] != want {
				return 0, &Error{Kind: KindStack, Msg: "mismatched group " + open[len(open)-1] + " closed by", Name: tok.Text, Col: tok.Pos}
			}
			open = open[:len(open)-1]
			if len(open) == 0 {
				return j, nil
			}
		}
	}
	return 0, &Error{Kind: KindStack, Msg: "unbalanced group: unclosed", Name: e.toks[i].Text, Col: e.toks[i].Pos}
}

// splitTop splits toks at separators outside any brackets.
func splitTop(toks []Token) [][]Token {
	var parts [][]Token
	depth, start := 0, 0
	for i, tok := range toks {
		if tok.Kind != TokenOp {
			continue
		}
		switch tok.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ",":
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

// conditional evaluates if(cond, then, else). Only the chosen branch is
// evaluated, which lets recursive subroutines terminate.
func (e *Engine[T]) conditional() (Value[T], error) {
	if e.next >= len(e.toks) || e.toks[e.next].Text != "(" {
		return Value[T]{}, syntaxError("want (condition, then, else) after", "if")
	}
	close, err := e.match(e.next)
	if err != nil {
		return Value[T]{}, err
	}
	parts := splitTop(e.toks[e.next+1 : close])
	if len(parts) != 3 {
		return Value[T]{}, syntaxError("want (condition, then, else) after", "if")
	}
	e.next = close + 1
	c, err := e.sub(parts[0])
	if err != nil {
		return Value[T]{}, err
	}
	c = consolidate(c)
	if c.Kind != ValueDiscrete {
		return Value[T]{}, domainError("if", c.Format(e.arith))
	}
	zero := e.arith.Zero()
	if e.arith.Less(c.Num, zero) || e.arith.Less(zero, c.Num) {
		return e.sub(parts[1])
	}
	return e.sub(parts[2])
}

// sub evaluates a token sequence in the engine's own scope.
func (e *Engine[T]) sub(toks []Token) (Value[T], error) {
	return newEngine(e.env, e.table, e.depth).Run(toks)
}

// scalar evaluates a token sequence which must produce a single element.
func (e *Engine[T]) scalar(toks []Token, what string) (T, error) {
	v, err := e.sub(toks)
	if err != nil {
		var zero T
		return zero, err
	}
	v = consolidate(v)
	if v.Kind != ValueDiscrete {
		var zero T
		return zero, syntaxError(what+" must be a scalar, not", v.Format(e.arith))
	}
	return v.Num, nil
}

// sequence parses the content of a sequence literal.
func (e *Engine[T]) sequence(text string) (Value[T], error) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	xs := make([]T, 0, len(fields))
	for _, f := range fields {
		x, err := e.arith.Parse(f)
		if err != nil {
			return Value[T]{}, &Error{Kind: KindSyntax, Msg: "invalid sequence element", Name: f, Err: err}
		}
		xs = append(xs, x)
	}
	return Array(xs), nil
}

// execute performs an operator taken from the operator stack.
func (e *Engine[T]) execute(ent opEntry[T]) error {
	op := ent.op
	if e.env.trace != nil {
		e.env.trace.Printf("%*s%s (depth %d, %d values)", 2*e.depth, "", op.Name, e.depth, len(e.values))
	}
	var (
		r   Value[T]
		err error
	)
	switch op.Kind {
	case OpBinary:
		var x, y Value[T]
		if y, err = e.values.pop(); err != nil {
			return at(err, ent.pos)
		}
		if x, err = e.values.pop(); err != nil {
			return at(err, ent.pos)
		}
		r, err = op.Binary(e, x, y)
	case OpUnary, OpCall, OpPostfix:
		var x Value[T]
		if x, err = e.values.pop(); err != nil {
			return at(err, ent.pos)
		}
		r, err = e.call(op, x)
	case OpStore:
		return at(e.store(), ent.pos)
	default:
		return &Error{Kind: KindStack, Msg: "cannot execute", Name: op.Name, Col: ent.pos}
	}
	if err != nil {
		return at(err, ent.pos)
	}
	e.values.push(r)
	return nil
}

// call applies a unary, postfix, or call operation. A calculus request on the
// argument of a calculus-capable operation dispatches to calculus instead.
func (e *Engine[T]) call(op *Operation[T], x Value[T]) (Value[T], error) {
	if req, ok := x.Meta.(CalculusRequest[T]); ok && op.Calculus {
		return e.dispatch(op, x.Bare(), req)
	}
	r, err := op.Call(e, x)
	if err != nil {
		return r, err
	}
	if d, ok := x.Meta.(*ArrayDescriptor[T]); ok && op.Calculus && r.Kind != ValueDiscrete && r.Meta == nil {
		r.Meta = d.Clone(op.Name)
	}
	return r, nil
}
