package lines

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Thresholds, in characters.
const (
	unclosedBraceMaxLen = 60
	noiseSlack          = 30
	minLineLen          = 3
)

const (
	tableBorderPrefix = "+---"
	tableRowPrefix    = "| "
	tableRowChars     = "| +-."
)

// Reason names the rule that dropped a line.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonCode       Reason = "code"
	ReasonBlacklist  Reason = "blacklist"
	ReasonStructural Reason = "structural"
	ReasonShort      Reason = "short"
)

// Reasons lists drop reasons in evaluation order.
var Reasons = []Reason{ReasonCode, ReasonBlacklist, ReasonStructural, ReasonShort}

// Decision is the outcome of classifying one line.
type Decision struct {
	Keep   bool
	Reason Reason
}

// candidate is a stripped, non-empty line with its folded form cached.
type candidate struct {
	text   string
	lower  string
	length int
}

func newCandidate(stripped string) candidate {
	return candidate{
		text:   stripped,
		lower:  strings.ToLower(stripped),
		length: utf8.RuneCountInString(stripped),
	}
}

type rule struct {
	reason Reason
	match  func(candidate) bool
}

// Classify decides whether a line is kept. Rules run in order and the
// first match drops the line; later rules rely on code-like lines having
// been filtered already. Blank lines are dropped as ReasonNone.
func (rs *RuleSet) Classify(line string) Decision {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return Decision{}
	}
	return rs.classify(newCandidate(stripped))
}

func (rs *RuleSet) classify(c candidate) Decision {
	for _, r := range rs.order {
		if r.match(c) {
			return Decision{Reason: r.reason}
		}
	}
	return Decision{Keep: true}
}

func (rs *RuleSet) isCode(c candidate) bool {
	for _, ind := range rs.codeIndicators {
		if strings.Contains(c.text, ind) {
			return true
		}
	}
	if strings.Contains(c.text, "{") && !strings.Contains(c.text, "}") && c.length < unclosedBraceMaxLen {
		return true
	}
	_, ok := rs.codeLines[c.text]
	return ok
}

func (rs *RuleSet) isBlacklisted(c candidate) bool {
	_, ok := rs.blacklist[c.lower]
	return ok
}

func (rs *RuleSet) isStructural(c candidate) bool {
	for _, m := range rs.markers {
		if strings.Contains(c.lower, m.lower) && c.length < m.length+noiseSlack {
			return true
		}
	}
	if rs.footer != "" && strings.Contains(c.lower, rs.footer) && strings.Contains(c.text, "|") {
		return true
	}
	if rs.pageHeader != nil && rs.pageHeader.MatchString(c.text) {
		return true
	}
	if strings.HasPrefix(c.text, tableBorderPrefix) {
		return true
	}
	return strings.HasPrefix(c.text, tableRowPrefix) && onlyChars(c.text, tableRowChars)
}

// isShortSymbol drops one- and two-character lines that open with a
// symbol. c.text is never empty here.
func isShortSymbol(c candidate) bool {
	if c.length >= minLineLen {
		return false
	}
	r, _ := utf8.DecodeRuneInString(c.text)
	return !isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func onlyChars(s, allowed string) bool {
	for _, r := range s {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}
