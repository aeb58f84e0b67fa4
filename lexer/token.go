package lexer

import "strconv"

// Kind identifies the type of a template token.
type Kind uint8

const (
	Literal       Kind = iota
	OpenOptional       // [
	CloseOptional      // ]
	OpenHard           // {
	CloseHard          // }
	EscapedVar         // $name
	LiteralVar         // #name
	TargetVar          // @name
	OptionVar          // ?name
)

// DefaultType is the declared type of a variable written without ":type".
const DefaultType = "String"

var kindNames = [...]string{
	Literal:       "Literal",
	OpenOptional:  "OpenOptional",
	CloseOptional: "CloseOptional",
	OpenHard:      "OpenHard",
	CloseHard:     "CloseHard",
	EscapedVar:    "EscapedVar",
	LiteralVar:    "LiteralVar",
	TargetVar:     "TargetVar",
	OptionVar:     "OptionVar",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsVariable reports whether the kind is one of the four variable sigils.
func (k Kind) IsVariable() bool {
	return k >= EscapedVar && k <= OptionVar
}

// IsInput reports whether the kind names a caller supplied value.
// Escaped, literal and option variables share one namespace.
func (k Kind) IsInput() bool {
	return k == EscapedVar || k == LiteralVar || k == OptionVar
}

// Token is one lexical element of a template.
type Token struct {
	Kind Kind
	Text string // literal text, or the variable name
	Type string // declared type, variables only
	Pos  int    // byte offset in the source
}

func (t Token) String() string {
	switch {
	case t.Kind.IsVariable():
		return t.Kind.String() + "(" + t.Text + ":" + t.Type + ")"
	case t.Kind == Literal:
		return "Literal(" + strconv.Quote(t.Text) + ")"
	default:
		return t.Kind.String()
	}
}
