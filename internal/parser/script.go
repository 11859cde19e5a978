package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hypercastle/internal/render"
)

// The script is tokenized, not evaluated. Three shapes are recognized:
//
//	("let" | "const") NAME "=" integer { "," NAME "=" expr } ";"
//	classIds "=" "[" { string [","] } "]"
//	uni "=" "[" { integer [","] } "]"
//
// Only MODE, RESOURCE, DIRECTION and SEED are read from declarations. RESOURCE is
// stored divided by 1e4.

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenNumber
	tokenString
	tokenPunct
	tokenRegex
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func tokenizeScript(src string) []token {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isSpace(c):
			i++
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				return tokens
			}
			i += end + 1
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return tokens
			}
			i += end + 4
		case c == '/' && regexAllowed(tokens):
			end := regexEnd(src, i)
			if end < 0 {
				tokens = append(tokens, token{kind: tokenPunct, text: "/"})
				i++
				continue
			}
			tokens = append(tokens, token{kind: tokenRegex, text: src[i:end]})
			i = end
		case c == '"' || c == '\'' || c == '`':
			value, next := readScriptString(src, i)
			tokens = append(tokens, token{kind: tokenString, text: value})
			i = next
		case c >= '0' && c <= '9' || (c == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9'):
			start := i
			for i < len(src) && (isIdentByte(src[i]) || src[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, text: src[start:i]})
		case isIdentByte(c) || c >= utf8.RuneSelf:
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if r < utf8.RuneSelf && !isIdentByte(byte(r)) || r >= utf8.RuneSelf && !unicode.IsLetter(r) {
					break
				}
				i += size
			}
			if i == start {
				_, size := utf8.DecodeRuneInString(src[i:])
				i += size
				continue
			}
			tokens = append(tokens, token{kind: tokenIdent, text: src[start:i]})
		default:
			tokens = append(tokens, token{kind: tokenPunct, text: string(c)})
			i++
		}
	}
	return tokens
}

// regexAllowed reports whether a '/' after tokens starts a regular expression
// literal rather than a division.
func regexAllowed(tokens []token) bool {
	if len(tokens) == 0 {
		return true
	}
	prev := tokens[len(tokens)-1]
	switch prev.kind {
	case tokenPunct:
		return prev.text != ")" && prev.text != "]" && prev.text != "}"
	case tokenIdent:
		return prev.text == "return" || prev.text == "typeof"
	}
	return false
}

// regexEnd returns the offset just past the regular expression literal and its
// flags starting at i, or -1 when the literal is not closed on the same line.
func regexEnd(src string, i int) int {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch c := src[j]; {
		case c == '\\':
			j++
		case c == '\n':
			return -1
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			j++
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			return j
		}
	}
	return -1
}

// readScriptString returns the unquoted contents of the literal starting at i
// and the offset just past it.
func readScriptString(src string, i int) (string, int) {
	quote := src[i]
	var b strings.Builder
	i++
	for i < len(src) {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			b.WriteByte(src[i+1])
			i += 2
			continue
		}
		i++
		if c == quote {
			return b.String(), i
		}
		b.WriteByte(c)
	}
	return b.String(), i
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// scriptResult is what the script contributes to the model.
type scriptResult struct {
	params    render.Params
	classIDs  []rune
	anchors   []int
	defaulted []string
	warnings  []string
}

var scriptParameters = []string{"MODE", "RESOURCE", "DIRECTION", "SEED"}

func extractScript(src string) scriptResult {
	var out scriptResult
	tokens := tokenizeScript(src)
	found := make(map[string]bool, len(scriptParameters))
	var seenClassIDs, seenAnchors bool

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.kind == tokenIdent && (tok.text == "let" || tok.text == "const"):
			extractDeclarations(tokens, i+1, &out, found)
		case tok.is(tokenIdent, "classIds") && isArrayAssignment(tokens, i):
			elements, next := arrayElements(tokens, i+3)
			if !seenClassIDs {
				out.classIDs = classIDsFrom(elements)
				seenClassIDs = true
			}
			i = next - 1
		case tok.is(tokenIdent, "uni") && isArrayAssignment(tokens, i):
			elements, next := arrayElements(tokens, i+3)
			if !seenAnchors {
				out.anchors = anchorsFrom(elements)
				seenAnchors = true
			}
			i = next - 1
		}
	}

	for _, name := range scriptParameters {
		if !found[name] {
			out.defaulted = append(out.defaulted, name)
			out.warnings = append(out.warnings, fmt.Sprintf("script parameter %s not found; defaulting to 0", name))
		}
	}
	return out
}

// extractDeclarations reads the declarator list starting at i and returns the
// index of the first token after it. A declaration keyword also ends an
// initializer, which covers statements left without a semicolon.
func extractDeclarations(tokens []token, i int, out *scriptResult, found map[string]bool) int {
	for i < len(tokens) {
		if tokens[i].kind != tokenIdent {
			return i
		}
		name := tokens[i].text
		i++
		if i >= len(tokens) || !tokens[i].is(tokenPunct, "=") {
			return i
		}
		i++

		start := i
		depth := 0
		for i < len(tokens) {
			t := tokens[i]
			if t.kind == tokenIdent && isDeclarationKeyword(t.text) {
				break
			}
			if t.kind == tokenPunct {
				switch t.text {
				case "(", "[", "{":
					depth++
				case ")", "]", "}":
					depth--
				}
				if depth <= 0 && (t.text == "," || t.text == ";") || depth < 0 {
					break
				}
			}
			i++
		}
		setParameter(name, tokens[start:i], out, found)

		if i >= len(tokens) || !tokens[i].is(tokenPunct, ",") {
			return i
		}
		i++
	}
	return i
}

func isDeclarationKeyword(text string) bool {
	return text == "let" || text == "const" || text == "var"
}

func setParameter(name string, value []token, out *scriptResult, found map[string]bool) {
	if !contains(scriptParameters, name) {
		return
	}
	if len(value) != 1 || value[0].kind != tokenNumber {
		out.warnings = append(out.warnings, fmt.Sprintf("script parameter %s is not an integer literal; skipped", name))
		return
	}
	number, err := strconv.Atoi(value[0].text)
	if err != nil || number < 0 {
		out.warnings = append(out.warnings, fmt.Sprintf("script parameter %s=%s is not an integer literal; skipped", name, value[0].text))
		return
	}

	found[name] = true
	switch name {
	case "MODE":
		out.params.Mode = number
	case "RESOURCE":
		out.params.Resource = float64(number) / 1e4
	case "DIRECTION":
		out.params.Direction = number
	case "SEED":
		out.params.Seed = number
	}
}

func isArrayAssignment(tokens []token, i int) bool {
	return i+2 < len(tokens) && tokens[i+1].is(tokenPunct, "=") && tokens[i+2].is(tokenPunct, "[")
}

// arrayElements collects the literals of a flat array starting just after "[".
// It returns them with the index following the closing "]".
func arrayElements(tokens []token, i int) ([]token, int) {
	var elements []token
	for i < len(tokens) {
		t := tokens[i]
		i++
		if t.is(tokenPunct, "]") {
			return elements, i
		}
		if t.kind == tokenString || t.kind == tokenNumber {
			elements = append(elements, t)
		}
	}
	return elements, i
}

func classIDsFrom(elements []token) []rune {
	ids := make([]rune, 0, len(elements))
	for _, element := range elements {
		if element.kind != tokenString || utf8.RuneCountInString(element.text) != 1 {
			continue
		}
		r, _ := utf8.DecodeRuneInString(element.text)
		ids = append(ids, r)
	}
	return ids
}

func anchorsFrom(elements []token) []int {
	anchors := make([]int, 0, len(elements))
	for _, element := range elements {
		if element.kind != tokenNumber {
			continue
		}
		value, err := strconv.Atoi(element.text)
		if err != nil {
			continue
		}
		anchors = append(anchors, value)
	}
	return anchors
}
