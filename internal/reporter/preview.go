package reporter

import "unicode/utf8"

// DefaultPreviewLength is the number of characters shown for actual and
// expected output on a wrong answer.
const DefaultPreviewLength = 50

// Preview returns the first n characters of b, with "..." appended when
// anything was cut. n <= 0 disables truncation.
func Preview(b []byte, n int) string {
	if n <= 0 {
		return string(b)
	}
	offset := 0
	for count := 0; offset < len(b); count++ {
		if count == n {
			return string(b[:offset]) + "..."
		}
		_, size := utf8.DecodeRune(b[offset:])
		offset += size
	}
	return string(b)
}
