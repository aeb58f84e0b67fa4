// Package lexer splits template text into a flat token list.
//
// The lexer only checks bracket balance; building structure out of the
// brackets is left to the builder package.
package lexer

import (
	"fmt"
	"strings"
)

// Error reports malformed template text.
type Error struct {
	Pos   int
	AtEnd bool
	Msg   string
}

func (e *Error) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("parse error at character %d (end of input): %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at character %d: %s", e.Pos, e.Msg)
}

const typeSeparator = ':'

// special marks every byte that ends a literal run.
var special = [256]bool{
	'[': true, ']': true, '{': true, '}': true,
	'$': true, '#': true, '@': true, '?': true,
	'\'': true, '"': true, '\\': true,
}

var sigils = map[byte]Kind{
	'$': EscapedVar,
	'#': LiteralVar,
	'@': TargetVar,
	'?': OptionVar,
}

type openBracket struct {
	kind Kind
	pos  int
}

// scanner holds the state of a single Tokenize call.
type scanner struct {
	src      string
	pos      int
	tokens   []Token
	text     strings.Builder
	textPos  int
	brackets []openBracket
	inQuote  bool
	quote    byte
}

// Tokenize converts template text into tokens. Empty literal runs are not
// emitted. The result is owned by the caller.
func Tokenize(text string) ([]Token, error) {
	s := &scanner{src: text, textPos: -1}
	return s.run()
}

func (s *scanner) run() ([]Token, error) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if !special[c] {
			s.consumeRun()
			continue
		}

		if c == '\\' {
			// Outside quotes the escape is dropped, inside it is preserved.
			if s.inQuote {
				s.appendText('\\')
			}
			if s.pos+1 < len(s.src) {
				s.appendText(s.src[s.pos+1])
			}
			s.pos += 2
			continue
		}

		if s.inQuote {
			if c == s.quote {
				s.inQuote = false
			}
			s.appendText(c)
			s.pos++
			continue
		}

		if c == '\'' || c == '"' {
			s.inQuote = true
			s.quote = c
			s.appendText(c)
			s.pos++
			continue
		}

		s.flush()
		if err := s.structural(c); err != nil {
			return nil, err
		}
	}
	s.flush()

	if n := len(s.brackets); n > 0 {
		return nil, &Error{
			Pos:   len(s.src),
			AtEnd: true,
			Msg:   fmt.Sprintf("%d unclosed bracket(s), first opened at character %d", n, s.brackets[0].pos),
		}
	}
	return s.tokens, nil
}

func (s *scanner) consumeRun() {
	end := s.pos
	for end < len(s.src) && !special[s.src[end]] {
		end++
	}
	if s.textPos < 0 {
		s.textPos = s.pos
	}
	s.text.WriteString(s.src[s.pos:end])
	s.pos = end
}

func (s *scanner) appendText(c byte) {
	if s.textPos < 0 {
		s.textPos = s.pos
	}
	s.text.WriteByte(c)
}

func (s *scanner) flush() {
	if s.text.Len() == 0 {
		return
	}
	s.tokens = append(s.tokens, Token{Kind: Literal, Text: s.text.String(), Pos: s.textPos})
	s.text.Reset()
	s.textPos = -1
}

// structural handles a bracket or a variable sigil at s.pos.
func (s *scanner) structural(c byte) error {
	start := s.pos
	switch c {
	case '[':
		s.open(OpenOptional, "[")
		return nil
	case '{':
		s.open(OpenHard, "{")
		return nil
	case ']':
		return s.close(OpenOptional, CloseOptional, "]")
	case '}':
		return s.close(OpenHard, CloseHard, "}")
	}

	kind := sigils[c]
	s.pos++
	name := s.identifier()
	varType := ""
	if s.pos < len(s.src) && s.src[s.pos] == typeSeparator {
		s.pos++
		varType = s.identifier()
	}
	if name == "" {
		return &Error{Pos: start, Msg: fmt.Sprintf("missing identifier for variable %q", string(c))}
	}
	if varType == "" {
		varType = DefaultType
	}
	s.tokens = append(s.tokens, Token{Kind: kind, Text: name, Type: varType, Pos: start})
	return nil
}

func (s *scanner) open(kind Kind, text string) {
	s.brackets = append(s.brackets, openBracket{kind: kind, pos: s.pos})
	s.tokens = append(s.tokens, Token{Kind: kind, Text: text, Pos: s.pos})
	s.pos++
}

func (s *scanner) close(want, kind Kind, text string) error {
	n := len(s.brackets)
	if n == 0 || s.brackets[n-1].kind != want {
		return &Error{Pos: s.pos, Msg: fmt.Sprintf("mismatched closing bracket %q", text)}
	}
	s.brackets = s.brackets[:n-1]
	s.tokens = append(s.tokens, Token{Kind: kind, Text: text, Pos: s.pos})
	s.pos++
	return nil
}

func (s *scanner) identifier() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
