package expr

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// tokPow stands for both ** and ^. text/scanner tokens are small negative
// runes, so this value never collides with them.
const tokPow = -100

// lower rewrites a formula into fully parenthesized govaluate syntax. The
// grammar follows Python:
//
//	sum     = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | ident [ "(" [ sum { "," sum } ] ")" ] | "(" sum ")"
//
// so -x**2 is -(x**2), 2**3**2 is 2**(3**2) and x**-1 is allowed. Number
// literals, scientific notation included, are re-emitted in plain decimal
// form because govaluate's lexer does not read exponents.
func lower(src string) (string, error) {
	l := &lowerer{}
	l.s.Init(strings.NewReader(src))
	l.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	l.s.Error = func(s *scanner.Scanner, msg string) {
		l.fail("%s at column %d", msg, s.Pos().Column)
	}

	l.next()
	out := l.sum()
	if l.tok != scanner.EOF {
		l.fail("unexpected %q at column %d", l.s.TokenText(), l.s.Position.Column)
	}
	if l.err != nil {
		return "", l.err
	}
	return out, nil
}

type lowerer struct {
	s   scanner.Scanner
	tok rune
	err error
}

func (l *lowerer) fail(format string, args ...any) {
	if l.err == nil {
		l.err = fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
	}
}

func (l *lowerer) next() {
	if l.err != nil {
		l.tok = scanner.EOF
		return
	}
	l.tok = l.s.Scan()
	switch l.tok {
	case '*':
		if l.s.Peek() == '*' {
			l.s.Next()
			l.tok = tokPow
		}
	case '^':
		l.tok = tokPow
	case '<', '>', '=', '!', '&', '|', '~', '?', ':', '"', '\'', '`':
		if l.err == nil {
			l.err = fmt.Errorf("%w %s", ErrUnsupported, l.s.TokenText())
		}
		l.tok = scanner.EOF
	}
	if l.err != nil {
		l.tok = scanner.EOF
	}
}

func (l *lowerer) sum() string {
	left := l.term()
	for l.tok == '+' || l.tok == '-' {
		op := string(l.tok)
		l.next()
		left = "(" + left + " " + op + " " + l.term() + ")"
	}
	return left
}

func (l *lowerer) term() string {
	left := l.unary()
	for l.tok == '*' || l.tok == '/' || l.tok == '%' {
		op := string(l.tok)
		l.next()
		left = "(" + left + " " + op + " " + l.unary() + ")"
	}
	return left
}

func (l *lowerer) unary() string {
	switch l.tok {
	case '-':
		l.next()
		return "(-" + l.unary() + ")"
	case '+':
		l.next()
		return l.unary()
	}
	return l.power()
}

func (l *lowerer) power() string {
	base := l.primary()
	if l.tok != tokPow {
		return base
	}
	l.next()
	return "(" + base + " ** " + l.unary() + ")"
}

func (l *lowerer) primary() string {
	switch l.tok {
	case scanner.Int, scanner.Float:
		text := l.s.TokenText()
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.fail("bad number %q", text)
			return ""
		}
		l.next()
		return strconv.FormatFloat(v, 'f', -1, 64)

	case scanner.Ident:
		name := l.s.TokenText()
		l.next()
		if l.tok != '(' {
			return name
		}
		l.next()
		var args []string
		if l.tok == ')' {
			l.next()
			return name + "()"
		}
		for {
			args = append(args, l.sum())
			switch l.tok {
			case ',':
				l.next()
				continue
			case ')':
				l.next()
				return name + "(" + strings.Join(args, ", ") + ")"
			}
			l.fail("expected ',' or ')' in call to %s", name)
			return ""
		}

	case '(':
		l.next()
		inner := l.sum()
		if l.tok != ')' {
			l.fail("missing ')'")
			return ""
		}
		l.next()
		return "(" + inner + ")"

	case scanner.EOF:
		l.fail("unexpected end of formula")
		return ""
	}

	l.fail("unexpected %q at column %d", l.s.TokenText(), l.s.Position.Column)
	return ""
}
