package service

import "unicode"

// MinPasswordScore is the lowest PasswordScore accepted at registration.
const MinPasswordScore = 101

// PasswordScore rates a password from 0 to 255. Length counts for the most;
// digits, capitals and symbols add a bonus, characters used once or twice
// add a little, characters repeated three or more times cost points, and
// every character class present adds a flat bonus.
func PasswordScore(password string) uint8 {
	runes := []rune(password)
	score := 4 * len(runes)

	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			score += 3
			hasDigit = true
		case unicode.IsUpper(r):
			score += 3
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			score += 5
			hasSymbol = true
		}

		switch n := counts[r]; {
		case n == 1:
			score += 4
		case n == 2:
			score += 2
		default:
			score -= 4
		}
	}

	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			score += 10
		}
	}

	switch {
	case score < 0:
		return 0
	case score > 255:
		return 255
	}
	return uint8(score)
}
