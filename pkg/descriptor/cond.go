package descriptor

import "strings"

// Condition expressions guard uses/library/link directives. The grammar, in
// decreasing precedence:
//
//	flag = '!' flag | '(' or ')' | IDENT
//	and  = flag { ('&' | '&&' | <adjacent flag>) flag }
//	or   = and { ('|' | '||') and }
//
// Adjacency is an implicit AND: "GUI WIN32" means both flags set. The empty
// expression is vacuously true. Evaluation is stateless per call and never
// panics; anything unparseable degrades to false.

// Evaluate reports whether expr is satisfied by the active flags.
func Evaluate(expr string, activeFlags []string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	flags := make(map[string]bool, len(activeFlags))
	for _, f := range activeFlags {
		flags[f] = true
	}

	e := &condEval{expr: strings.TrimSpace(expr), flags: flags}
	if e.expr == "" {
		return true
	}
	return e.parseOr()
}

type condEval struct {
	expr  string
	pos   int
	flags map[string]bool
}

func (e *condEval) cur() byte {
	if e.pos < len(e.expr) {
		return e.expr[e.pos]
	}
	return 0
}

func (e *condEval) skipSpace() {
	for e.pos < len(e.expr) && (e.expr[e.pos] == ' ' || e.expr[e.pos] == '\t') {
		e.pos++
	}
}

func (e *condEval) readIdent() string {
	start := e.pos
	for e.pos < len(e.expr) && isIdentChar(e.expr[e.pos]) {
		e.pos++
	}
	return e.expr[start:e.pos]
}

func (e *condEval) parseFlag() bool {
	e.skipSpace()

	switch e.cur() {
	case '!':
		e.pos++
		return !e.parseFlag()
	case '(':
		e.pos++
		result := e.parseOr()
		e.skipSpace()
		if e.cur() == ')' {
			e.pos++
		}
		return result
	}

	if e.pos >= len(e.expr) {
		return true
	}
	ident := e.readIdent()
	if ident == "" {
		return true
	}
	return e.flags[ident]
}

func (e *condEval) parseAnd() bool {
	result := e.parseFlag()
	for {
		e.skipSpace()
		if e.pos >= len(e.expr) || e.cur() == ')' || e.cur() == '|' {
			return result
		}
		switch {
		case e.cur() == '&':
			e.pos++
			if e.cur() == '&' {
				e.pos++
			}
			result = e.parseFlag() && result
		case e.cur() == '!' || e.cur() == '(' || isIdentChar(e.cur()):
			result = e.parseFlag() && result
		default:
			return result
		}
	}
}

func (e *condEval) parseOr() bool {
	result := e.parseAnd()
	for {
		e.skipSpace()
		if e.pos >= len(e.expr) || e.cur() == ')' {
			return result
		}
		if e.cur() != '|' {
			return result
		}
		e.pos++
		if e.cur() == '|' {
			e.pos++
		}
		result = e.parseAnd() || result
	}
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
