package command

import (
	"errors"
	"strings"
	"unicode"
)

// Tokenizer errors. Distinct from "not a command", which Parse signals with
// a nil invocation and nil error.
var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrDanglingEscape    = errors.New("dangling escape")
)

// Invocation is a parsed command line: the case-folded command name and its
// positional arguments.
type Invocation struct {
	Name string
	Args []string
}

// Parse turns a raw line into an invocation. A line that does not start with
// the prefix, or carries nothing after it, is not a command: (nil, nil).
// Tokenization honors double-quoted segments and backslash escapes.
func Parse(line, prefix string) (*Invocation, error) {
	if prefix == "" || !strings.HasPrefix(line, prefix) {
		return nil, nil
	}

	rest := strings.TrimSpace(line[len(prefix):])
	if rest == "" {
		return nil, nil
	}

	tokens, err := tokenize(rest)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	return &Invocation{
		Name: strings.ToLower(tokens[0]),
		Args: tokens[1:],
	}, nil
}

// tokenize splits shell-like: double quotes group, backslash escapes the
// next character. Not full shell semantics.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	pending := false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			pending = true
			escaped = false
		case r == '\\':
			escaped = true
			pending = true
		case r == '"':
			inQuote = !inQuote
			pending = true
		case unicode.IsSpace(r) && !inQuote:
			if pending {
				tokens = append(tokens, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	if escaped {
		return nil, ErrDanglingEscape
	}
	if pending {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
