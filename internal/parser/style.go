package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"hypercastle/internal/color"
	"hypercastle/internal/render"
)

// The stylesheet grammar understood here:
//
//	sheet     = { at-rule | rule }
//	rule      = selector "{" decls "}"
//	at-rule   = "@" ident prelude ( ";" | "{" block "}" )
//	keyframes = "@" ["-webkit-"] "keyframes" name "{" { selector "{" decls "}" } "}"
//	decls     = { property ":" value [ ";" ] }
//
// Comments are skipped everywhere. Quotes and parentheses are balanced while
// scanning so data URIs inside values survive. Any other at-rule is skipped
// whole.

type declaration struct {
	property string
	value    string
}

type styleRule struct {
	selector string
	decls    []declaration
}

func (r styleRule) get(property string) string {
	for _, decl := range r.decls {
		if decl.property == property {
			return decl.value
		}
	}
	return ""
}

type keyframesRule struct {
	name   string
	frames []styleRule
}

type stylesheet struct {
	rules     []styleRule
	keyframes []keyframesRule
}

type cssScanner struct {
	src string
	pos int
}

func (s *cssScanner) done() bool { return s.pos >= len(s.src) }

func (s *cssScanner) skipSpaceAndComments() {
	for !s.done() {
		switch {
		case isSpace(s.src[s.pos]):
			s.pos++
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += end + 4
		default:
			return
		}
	}
}

// readUntil returns the text up to the first stop byte found outside quotes,
// parentheses and comments. The stop byte is not consumed.
func (s *cssScanner) readUntil(stops string) string {
	var b strings.Builder
	depth := 0
	for !s.done() {
		c := s.src[s.pos]
		switch {
		case c == '"' || c == '\'':
			b.WriteString(s.readQuoted())
			continue
		case c == '/' && strings.HasPrefix(s.src[s.pos:], "/*"):
			s.skipSpaceAndComments()
			b.WriteByte(' ')
			continue
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case depth == 0 && strings.IndexByte(stops, c) >= 0:
			return b.String()
		}
		b.WriteByte(c)
		s.pos++
	}
	return b.String()
}

func (s *cssScanner) readQuoted() string {
	quote := s.src[s.pos]
	start := s.pos
	s.pos++
	for !s.done() {
		c := s.src[s.pos]
		s.pos++
		if c == '\\' && !s.done() {
			s.pos++
			continue
		}
		if c == quote {
			break
		}
	}
	return s.src[start:s.pos]
}

// skipBlock consumes a balanced {...} block starting at the opening brace.
func (s *cssScanner) skipBlock() {
	depth := 0
	for !s.done() {
		c := s.src[s.pos]
		switch {
		case c == '"' || c == '\'':
			s.readQuoted()
			continue
		case c == '/' && strings.HasPrefix(s.src[s.pos:], "/*"):
			s.skipSpaceAndComments()
			continue
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				s.pos++
				return
			}
		}
		s.pos++
	}
}

func (s *cssScanner) expect(c byte) bool {
	s.skipSpaceAndComments()
	if s.done() || s.src[s.pos] != c {
		return false
	}
	s.pos++
	return true
}

func parseStylesheet(src string) stylesheet {
	s := &cssScanner{src: src}
	var sheet stylesheet
	for {
		s.skipSpaceAndComments()
		if s.done() {
			return sheet
		}
		switch s.src[s.pos] {
		case '@':
			s.parseAtRule(&sheet)
		case '}':
			// Stray closing brace.
			s.pos++
		default:
			selector := strings.TrimSpace(s.readUntil("{;}"))
			if !s.expect('{') {
				if !s.done() {
					s.pos++
				}
				continue
			}
			sheet.rules = append(sheet.rules, styleRule{selector: selector, decls: s.parseDeclarations()})
		}
	}
}

func (s *cssScanner) parseAtRule(sheet *stylesheet) {
	s.pos++
	prelude := strings.TrimSpace(s.readUntil("{;}"))
	var keyword, name string
	if fields := strings.Fields(prelude); len(fields) > 0 {
		keyword = strings.ToLower(fields[0])
		name = strings.Join(fields[1:], " ")
	}
	if s.done() {
		return
	}
	if s.src[s.pos] != '{' {
		s.pos++
		return
	}
	if keyword != "keyframes" && keyword != "-webkit-keyframes" {
		s.skipBlock()
		return
	}

	s.pos++
	block := keyframesRule{name: name}
	for {
		s.skipSpaceAndComments()
		if s.done() {
			break
		}
		if s.src[s.pos] == '}' {
			s.pos++
			break
		}
		selector := strings.TrimSpace(s.readUntil("{}"))
		if !s.expect('{') {
			continue
		}
		block.frames = append(block.frames, styleRule{selector: selector, decls: s.parseDeclarations()})
	}
	sheet.keyframes = append(sheet.keyframes, block)
}

// parseDeclarations reads declarations up to and including the closing brace.
func (s *cssScanner) parseDeclarations() []declaration {
	var decls []declaration
	for {
		s.skipSpaceAndComments()
		if s.done() {
			return decls
		}
		if s.src[s.pos] == '}' {
			s.pos++
			return decls
		}
		if s.src[s.pos] == ';' {
			s.pos++
			continue
		}
		text := s.readUntil(";}")
		property, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		decls = append(decls, declaration{
			property: strings.ToLower(strings.TrimSpace(property)),
			value:    value,
		})
	}
}

// styleResult is what the stylesheet contributes to the model.
type styleResult struct {
	background    color.Color
	hasBackground bool
	baseColors    []render.BaseColor
	animations    []render.Animation
	keyframes     []render.Keyframe
}

func extractStyle(sheet stylesheet) styleResult {
	var out styleResult
	for _, rule := range sheet.rules {
		if value := rule.get("background-color"); value != "" && !out.hasBackground {
			out.background = color.Parse(value)
			out.hasBackground = true
		}

		class, ok := selectorClass(rule.selector)
		if !ok {
			continue
		}
		if value := rule.get("color"); value != "" {
			out.baseColors = append(out.baseColors, render.BaseColor{Class: class, Color: color.Parse(value)})
		}
		if shorthand := rule.get("animation"); shorthand != "" {
			anim := parseAnimationShorthand(shorthand)
			anim.Class = class
			applyAnimationLonghands(&anim, rule)
			out.animations = append(out.animations, anim)
		}
	}

	for _, block := range sheet.keyframes {
		for _, frame := range block.frames {
			percentage, ok := keyframePercentage(frame.selector)
			if !ok {
				continue
			}
			out.keyframes = append(out.keyframes, render.Keyframe{
				Track:      block.name,
				Percentage: percentage,
				Color:      keyframeColor(frame),
			})
		}
	}
	return out
}

// selectorClass returns the class letter of a sigil-plus-letter selector such
// as ".a". Longer or grouped selectors carry no class.
func selectorClass(selector string) (rune, bool) {
	if utf8.RuneCountInString(selector) != 2 {
		return 0, false
	}
	_, size := utf8.DecodeRuneInString(selector)
	class, _ := utf8.DecodeRuneInString(selector[size:])
	return class, true
}

// keyframePercentage reads the number before the first '%' of a keyframe
// selector. Selectors without a percentage count as 0; stops outside 0..100 are
// dropped.
func keyframePercentage(selector string) (int, bool) {
	first, _, _ := strings.Cut(selector, ",")
	number, _, found := strings.Cut(first, "%")
	if !found {
		return 0, true
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || value < 0 || value > 100 {
		return 0, false
	}
	return int(value), true
}

func keyframeColor(frame styleRule) color.Color {
	if value := frame.get("color"); value != "" {
		return color.Parse(value)
	}
	for _, decl := range frame.decls {
		if c := color.Parse(decl.value); !c.IsZero() {
			return c
		}
	}
	return color.Color{}
}

var (
	timingKeywords    = []string{"ease", "linear", "ease-in", "ease-out", "ease-in-out", "step-start", "step-end"}
	directionKeywords = []string{"normal", "reverse", "alternate", "alternate-reverse"}
	fillKeywords      = []string{"none", "forwards", "backwards", "both"}
	playKeywords      = []string{"running", "paused"}
)

// parseAnimationShorthand splits the first animation of an "animation" value.
// The first time is the duration and the second the delay; keywords fill their
// longhand and the remaining identifier is the name.
func parseAnimationShorthand(value string) render.Animation {
	anim := render.Animation{
		Direction:      "normal",
		TimingFunction: "ease",
		FillMode:       "none",
		IterationCount: "1",
		PlayState:      "running",
	}
	first, _ := splitTopLevel(value, ',')
	times := 0
	var seen struct{ timing, direction, fill, iteration, play bool }
	for _, token := range splitTopLevelFields(first) {
		lower := strings.ToLower(token)
		if seconds, ok := parseTime(lower); ok {
			if times == 0 {
				anim.Duration = seconds
			} else if times == 1 {
				anim.Delay = seconds
			}
			times++
			continue
		}
		switch {
		case !seen.timing && (contains(timingKeywords, lower) || strings.HasPrefix(lower, "steps(") || strings.HasPrefix(lower, "cubic-bezier(")):
			anim.TimingFunction, seen.timing = token, true
		case !seen.iteration && (lower == "infinite" || isNumber(lower)):
			anim.IterationCount, seen.iteration = token, true
		case !seen.direction && contains(directionKeywords, lower):
			anim.Direction, seen.direction = token, true
		case !seen.fill && contains(fillKeywords, lower):
			anim.FillMode, seen.fill = token, true
		case !seen.play && contains(playKeywords, lower):
			anim.PlayState, seen.play = token, true
		case anim.Name == "":
			anim.Name = token
		}
	}
	return anim
}

func applyAnimationLonghands(anim *render.Animation, rule styleRule) {
	for _, decl := range rule.decls {
		switch decl.property {
		case "animation-name":
			anim.Name = decl.value
		case "animation-duration":
			if seconds, ok := parseTime(decl.value); ok {
				anim.Duration = seconds
			}
		case "animation-delay":
			if seconds, ok := parseTime(decl.value); ok {
				anim.Delay = seconds
			}
		case "animation-direction":
			anim.Direction = decl.value
		case "animation-timing-function":
			anim.TimingFunction = decl.value
		case "animation-fill-mode":
			anim.FillMode = decl.value
		case "animation-iteration-count":
			anim.IterationCount = decl.value
		case "animation-play-state":
			anim.PlayState = decl.value
		}
	}
}

// parseTime converts "<number>ms" or "<number>s" to seconds.
func parseTime(token string) (float64, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	divisor := 1.0
	switch {
	case strings.HasSuffix(token, "ms"):
		token = strings.TrimSuffix(token, "ms")
		divisor = 1000
	case strings.HasSuffix(token, "s"):
		token = strings.TrimSuffix(token, "s")
	default:
		return 0, false
	}
	if !isNumber(token) {
		return 0, false
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value / divisor, true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || (i == 0 && (c == '-' || c == '+')):
		default:
			return false
		}
	}
	return digits > 0
}

// splitTopLevel cuts s at the first sep outside parentheses.
func splitTopLevel(s string, sep byte) (string, string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

// splitTopLevelFields splits on whitespace outside parentheses.
func splitTopLevelFields(s string) []string {
	var fields []string
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case isSpace(c) && depth == 0:
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
