package lines

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	mergeMaxLen   = 60
	mergeShortLen = 30
)

const mergeTerminators = ".,:;"

// mergeFragments re-joins lines that layout extraction split mid-sentence.
// A line under 60 characters absorbs the next line when it ends in one of
// ". , : ;" or is under 30 characters, and the next line starts lower-case.
// One forward pass; a merged pair is not considered again.
func mergeFragments(lines []string) ([]string, int) {
	out := make([]string, 0, len(lines))
	merges := 0

	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		if i+1 < len(lines) && shouldMerge(cur, lines[i+1]) {
			out = append(out, cur+" "+lines[i+1])
			merges++
			i++
			continue
		}
		out = append(out, cur)
	}
	return out, merges
}

func shouldMerge(cur, next string) bool {
	n := utf8.RuneCountInString(cur)
	if n >= mergeMaxLen {
		return false
	}
	if !endsWithAny(cur, mergeTerminators) && n >= mergeShortLen {
		return false
	}
	first, size := utf8.DecodeRuneInString(next)
	return size > 0 && isLower(first)
}

// isLower also accepts Other_Lowercase runes such as "ª" and "º", which
// unicode.IsLower leaves out.
func isLower(r rune) bool {
	return unicode.IsLower(r) || unicode.Is(unicode.Other_Lowercase, r)
}

func endsWithAny(s, chars string) bool {
	last, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && strings.ContainsRune(chars, last)
}
