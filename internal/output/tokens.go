package output

import (
	"fmt"
	"unicode/utf8"
)

// CharsPerToken is the approximate character-to-token ratio for code.
const CharsPerToken = 4.0

// EstimateTokens returns an approximate token count for the given text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return estimate(utf8.RuneCountInString(text))
}

// EstimateTokensBytes estimates the token count of n bytes of source.
func EstimateTokensBytes(n int) int {
	if n <= 0 {
		return 0
	}
	return estimate(n)
}

func estimate(chars int) int {
	return int(float64(chars)/CharsPerToken + 0.5) // Round to nearest integer
}

// FormatTokenCount formats a token count for display.
// Counts >= 1000 are formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}
