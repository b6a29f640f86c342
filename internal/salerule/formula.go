package salerule

import (
	"fmt"
	"strconv"
	"unicode"
)

// FormulaError wraps a failure to compile or evaluate a price formula.
type FormulaError struct {
	Formula string
	Err     error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %q: %v", e.Formula, e.Err)
}

func (e *FormulaError) Unwrap() error { return e.Err }

// Formula is a compiled price-adjustment expression over a single free
// variable. Supported grammar:
//
//	expr  := sum [ "if" cond "else" expr ]
//	cond  := sum ("<" | ">" | "<=" | ">=" | "==") sum
//	sum   := prod (("+" | "-") prod)*
//	prod  := unary (("*" | "/") unary)*
//	unary := "-" unary | NUMBER | IDENT | "(" expr ")"
//
// Evaluation is pure: no state is read or written beyond the input.
type Formula struct {
	src  string
	root node
	vn   string
}

// Compile parses src into a Formula. The first identifier encountered
// names the free variable; any other identifier is an error.
func Compile(src string) (*Formula, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, &FormulaError{Formula: src, Err: err}
	}
	p := &parser{toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, &FormulaError{Formula: src, Err: err}
	}
	if p.peek().kind != tokEOF {
		return nil, &FormulaError{Formula: src, Err: fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)}
	}
	return &Formula{src: src, root: root, vn: p.varName}, nil
}

// Eval computes the formula at x. Runtime failures (division by zero)
// are reported as *FormulaError.
func (f *Formula) Eval(x float64) (float64, error) {
	v, err := f.root.eval(x)
	if err != nil {
		return 0, &FormulaError{Formula: f.src, Err: err}
	}
	return v, nil
}

// String returns the formula source text.
func (f *Formula) String() string { return f.src }

// Var returns the name of the formula's free variable, or "" when the
// formula is constant.
func (f *Formula) Var() string { return f.vn }

// --- lexer ---

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokIf
	tokElse
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '<' || c == '>':
			op := string(c)
			if i+1 < len(src) && src[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		case c == '=':
			if i+1 >= len(src) || src[i+1] != '=' {
				return nil, fmt.Errorf("single '=' at position %d (use '==')", i)
			}
			toks = append(toks, token{kind: tokOp, text: "==", pos: i})
			i += 2
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			num, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q at position %d", src[i:j], i)
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], num: num, pos: i})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			word := src[i:j]
			kind := tokIdent
			switch word {
			case "if":
				kind = tokIf
			case "else":
				kind = tokElse
			}
			toks = append(toks, token{kind: kind, text: word, pos: i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, text: "", pos: len(src)})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// --- parser ---

type parser struct {
	toks    []token
	pos     int
	varName string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.next()
			return op, true
		}
	}
	return "", false
}

// parseExpr handles the trailing conditional: A if COND else B.
func (p *parser) parseExpr() (node, error) {
	then, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokIf {
		return then, nil
	}
	p.next()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokElse {
		return nil, fmt.Errorf("expected 'else' at position %d", p.peek().pos)
	}
	p.next()
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &condNode{cond: cond, then: then, els: els}, nil
}

func (p *parser) parseCond() (node, error) {
	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("<=", ">=", "==", "<", ">")
	if !ok {
		return nil, fmt.Errorf("expected comparison operator at position %d", p.peek().pos)
	}
	rhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return &cmpNode{op: op, lhs: lhs, rhs: rhs}, nil
}

func (p *parser) parseSum() (node, error) {
	lhs, err := p.parseProd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseProd()
		if err != nil {
			return nil, err
		}
		lhs = &binNode{op: op, lhs: lhs, rhs: rhs}
	}
}

func (p *parser) parseProd() (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/")
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &binNode{op: op, lhs: lhs, rhs: rhs}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.acceptOp("-"); ok {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{inner: inner}, nil
	}
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numNode(t.num), nil
	case tokIdent:
		if p.varName == "" {
			p.varName = t.text
		} else if p.varName != t.text {
			return nil, fmt.Errorf("unknown identifier %q at position %d (variable is %q)", t.text, t.pos, p.varName)
		}
		return varNode{}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.peek().pos)
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}

// --- evaluation ---

type node interface {
	eval(x float64) (float64, error)
}

type numNode float64

func (n numNode) eval(float64) (float64, error) { return float64(n), nil }

type varNode struct{}

func (varNode) eval(x float64) (float64, error) { return x, nil }

type negNode struct{ inner node }

func (n *negNode) eval(x float64) (float64, error) {
	v, err := n.inner.eval(x)
	return -v, err
}

type binNode struct {
	op       string
	lhs, rhs node
}

func (n *binNode) eval(x float64) (float64, error) {
	l, err := n.lhs.eval(x)
	if err != nil {
		return 0, err
	}
	r, err := n.rhs.eval(x)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %q", n.op)
}

type cmpNode struct {
	op       string
	lhs, rhs node
}

func (n *cmpNode) eval(x float64) (float64, error) {
	l, err := n.lhs.eval(x)
	if err != nil {
		return 0, err
	}
	r, err := n.rhs.eval(x)
	if err != nil {
		return 0, err
	}
	var ok bool
	switch n.op {
	case "<":
		ok = l < r
	case ">":
		ok = l > r
	case "<=":
		ok = l <= r
	case ">=":
		ok = l >= r
	case "==":
		ok = l == r
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}

type condNode struct {
	cond, then, els node
}

func (n *condNode) eval(x float64) (float64, error) {
	c, err := n.cond.eval(x)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return n.then.eval(x)
	}
	return n.els.eval(x)
}
