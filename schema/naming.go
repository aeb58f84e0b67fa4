package schema

import (
	"go/token"
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Naming helpers shared by the CRUD generators and the Go emitter.

// pluralizeClient is a singleton instance for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// =========================================================================
// Identifier Conversion
// =========================================================================

// ExportedName converts a template or column name to an exported Go
// identifier: "user_name" and "userName" both become "UserName".
func ExportedName(name string) string {
	return joinWords(splitWords(name), true)
}

// UnexportedName converts name to a lower camel case Go identifier that is
// never a Go keyword.
func UnexportedName(name string) string {
	ident := joinWords(splitWords(name), false)
	if ident == "" || token.IsKeyword(ident) {
		return ident + "_"
	}
	return ident
}

// StatementName builds a CRUD statement name such as "selectUser" or
// "listUsers" from a verb and a (possibly plural, snake_case) table name.
func StatementName(verb, table string, plural bool) string {
	words := splitWords(table)
	if len(words) == 0 {
		return verb
	}
	last := len(words) - 1
	if plural {
		words[last] = pluralize(words[last])
	} else {
		words[last] = singularize(words[last])
	}
	return verb + joinWords(words, true)
}

// splitWords breaks snake_case, kebab-case, camelCase and PascalCase names
// into lower case words. Acronyms stay together: "HTTPServer" -> http, server.
func splitWords(name string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
		}
		current.WriteRune(unicode.ToLower(r))
	}
	flush()
	return words
}

func joinWords(words []string, exported bool) string {
	// Casers keep state and must not be shared between goroutines.
	title := cases.Title(language.Und, cases.NoLower)

	var result strings.Builder
	for i, w := range words {
		if i == 0 && !exported {
			result.WriteString(w)
			continue
		}
		result.WriteString(title.String(w))
	}
	ident := result.String()
	if ident != "" && unicode.IsDigit([]rune(ident)[0]) {
		ident = "X" + ident
	}
	return ident
}

// =========================================================================
// Pluralization Functions
// =========================================================================

// pluralize converts singular nouns to their plural forms.
func pluralize(name string) string {
	if name == "" {
		return ""
	}
	return preserveCase(name, pluralizeClient.Plural(name))
}

// singularize converts plural nouns to their singular forms.
func singularize(name string) string {
	if name == "" {
		return ""
	}
	return preserveCase(name, pluralizeClient.Singular(name))
}

// preserveCase applies the case pattern of original to converted.
func preserveCase(original, converted string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(converted)
	}
	if r := []rune(original); unicode.IsUpper(r[0]) {
		c := []rune(converted)
		c[0] = unicode.ToUpper(c[0])
		return string(c)
	}
	return converted
}
