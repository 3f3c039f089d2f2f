// Package tokens estimates how many model tokens a piece of text will cost.
//
// The estimate is a fixed character heuristic, not a tokenizer. Callers
// compare estimates across versions, so the constants must not change.
package tokens

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
)

const (
	charsPerToken    = 3.5
	specialCharCost  = 0.3
	whitespaceCost   = 0.2
	specialCharacter = "{}()[];,.<>!@#$%^&*+=|\\/`~"

	// DefaultTruncationSuffix marks text cut by Truncate.
	DefaultTruncationSuffix = "\n... (truncated)"
)

// Estimate returns the approximate token count of text:
// ceil(len/3.5 + 0.3*specials + 0.2*whitespaceRuns), where len counts
// UTF-16 code units.
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	var units, specials, runs int
	inSpace := false
	for _, r := range text {
		units += utf16.RuneLen(r)
		if strings.ContainsRune(specialCharacter, r) {
			specials++
		}
		if isSpace(r) {
			if !inSpace {
				runs++
			}
			inSpace = true
		} else {
			inSpace = false
		}
	}

	// Explicit conversions round each term and keep the compiler from fusing.
	base := float64(units) / charsPerToken
	total := float64(base + float64(float64(specials)*specialCharCost))
	total = float64(total + float64(float64(runs)*whitespaceCost))
	return int(math.Ceil(total))
}

// isSpace is Unicode White_Space minus U+0085, plus the byte order mark.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// Fits reports whether text's estimate is within limit.
func Fits(text string, limit int) bool {
	return Estimate(text) <= limit
}

// Truncate returns the longest rune prefix of text whose estimate fits in
// maxTokens minus the suffix's estimate, followed by suffix. Text that
// already fits is returned unchanged.
func Truncate(text string, maxTokens int, suffix string) string {
	if Estimate(text) <= maxTokens {
		return text
	}
	target := maxTokens - Estimate(suffix)

	runes := []rune(text)
	lo, hi := 0, len(runes)
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if Estimate(string(runes[:mid])) <= target {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:best]) + suffix
}

// UsageItem is one named text's share of a Usage.
type UsageItem struct {
	Name       string  `json:"name"`
	Tokens     int     `json:"tokens"`
	Percentage float64 `json:"percentage"`
}

// Usage breaks a token total down by named part.
type Usage struct {
	TotalTokens int         `json:"totalTokens"`
	Items       []UsageItem `json:"items"`
}

// Summarize estimates each named text and orders the parts by token count,
// largest first. Ties sort by name.
func Summarize(parts map[string]string) Usage {
	u := Usage{Items: make([]UsageItem, 0, len(parts))}
	for name, text := range parts {
		n := Estimate(text)
		u.TotalTokens += n
		u.Items = append(u.Items, UsageItem{Name: name, Tokens: n})
	}
	for i := range u.Items {
		if u.TotalTokens > 0 {
			u.Items[i].Percentage = float64(u.Items[i].Tokens) / float64(u.TotalTokens) * 100
		}
	}
	sort.Slice(u.Items, func(i, j int) bool {
		if u.Items[i].Tokens != u.Items[j].Tokens {
			return u.Items[i].Tokens > u.Items[j].Tokens
		}
		return u.Items[i].Name < u.Items[j].Name
	})
	return u
}
