package metadata

import "strings"

// ValidateISBN normalizes and checksums an ISBN candidate.
// Returns the normalized ISBN (digits plus a possible trailing X) when the
// candidate is a valid ISBN-10 or ISBN-13, or empty string otherwise.
func ValidateISBN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X':
			b.WriteRune(r)
		case r == '-' || r == ' ':
			// separators are dropped
		default:
			return ""
		}
	}

	isbn := b.String()
	switch len(isbn) {
	case 10:
		if validISBN10(isbn) {
			return isbn
		}
	case 13:
		if validISBN13(isbn) {
			return isbn
		}
	}
	return ""
}

func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var digit int
		if r == 'X' {
			// X is only valid as the check digit
			if i != 9 {
				return false
			}
			digit = 10
		} else {
			digit = int(r - '0')
		}
		sum += (10 - i) * digit
	}
	return sum%11 == 0
}

func validISBN13(isbn string) bool {
	if strings.ContainsRune(isbn, 'X') {
		return false
	}
	sum := 0
	for i, r := range isbn {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}
