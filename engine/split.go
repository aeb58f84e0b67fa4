package engine

import (
	"regexp"
	"strings"
)

// statementPattern matches one "name:=body;" block. The terminating
// semicolon must end a line, so semicolons inside a body are allowed as
// long as they are followed by more text on the same line.
var statementPattern = regexp.MustCompile(`(?ms)^([0-9a-zA-Z_]+):=(.*?);$`)

// Block is one named statement of a host file.
type Block struct {
	Name string
	Body string
	// Line is the 1-based line the block starts on.
	Line int
}

// Split returns the statement blocks of a host file in file order. Text
// outside blocks is ignored. CRLF line endings are read as LF.
func Split(source string) []Block {
	source = strings.ReplaceAll(source, "\r\n", "\n")

	var blocks []Block
	for _, m := range statementPattern.FindAllStringSubmatchIndex(source, -1) {
		blocks = append(blocks, Block{
			Name: source[m[2]:m[3]],
			Body: strings.TrimSpace(source[m[4]:m[5]]),
			Line: strings.Count(source[:m[0]], "\n") + 1,
		})
	}
	return blocks
}
