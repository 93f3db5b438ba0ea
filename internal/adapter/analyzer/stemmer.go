package analyzer

import "strings"

// stem applies a light suffix-stripping stem to an English word. It is not
// a full Porter implementation; it normalizes the common inflections that
// matter for term matching (plurals, -ing, -ed, -ly, -tion) while leaving
// short words untouched.
func stem(word string) string {
	if len(word) <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "sses"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ss"):
		return word
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "us"):
		word = word[:len(word)-1]
	}

	if len(word) > 5 && strings.HasSuffix(word, "ing") {
		stripped := word[:len(word)-3]
		if hasVowel(stripped) {
			word = undouble(stripped)
		}
	} else if len(word) > 4 && strings.HasSuffix(word, "ed") {
		stripped := word[:len(word)-2]
		if hasVowel(stripped) {
			word = undouble(stripped)
		}
	}

	if len(word) > 5 && strings.HasSuffix(word, "tion") {
		word = word[:len(word)-3] + "e"
	} else if len(word) > 4 && strings.HasSuffix(word, "ly") {
		word = word[:len(word)-2]
	}

	return word
}

// undouble collapses a doubled final consonant left by suffix stripping
// (e.g. "runn" -> "run"), but keeps ll/ss/zz.
func undouble(word string) string {
	n := len(word)
	if n < 2 || word[n-1] != word[n-2] {
		return word
	}
	switch word[n-1] {
	case 'l', 's', 'z':
		return word
	}
	if isVowelByte(word[n-1]) {
		return word
	}
	return word[:n-1]
}

func hasVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if isVowelByte(word[i]) {
			return true
		}
	}
	return false
}

func isVowelByte(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
