package builder

import (
	"regexp"
	"strings"
	"unicode"
)

var wordSeparators = regexp.MustCompile(`[_\-.\s]+`)

// DefaultLabeler turns a control name into a label: "billingAddress" and
// "billing_address" both become "Billing Address". Runs of capitals are kept
// together ("customerID" becomes "Customer ID").
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}
	var words []string
	for _, chunk := range wordSeparators.Split(name, -1) {
		for _, word := range splitCamel(chunk) {
			words = append(words, capitalize(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		if boundary(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

func boundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur), unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		// "HTMLParser" splits before the final capital.
		return true
	}
	return false
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	allUpper := true
	for _, r := range runes {
		if unicode.IsLower(r) {
			allUpper = false
			break
		}
	}
	if allUpper && len(runes) > 1 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
