// Copyright © 2024 The Fuus Army Knife authors

package lexer

// The match functions return the length of the literal at the start of b,
// or zero when b does not begin with one.

func matchInt(b []byte) int {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	if hasRadixPrefix(b[i:], 'x') {
		if j := digitRun(b, i+2, isHexByte); j > i+2 {
			return j
		}
	}
	if hasRadixPrefix(b[i:], 'b') {
		if j := digitRun(b, i+2, isBinByte); j > i+2 {
			return j
		}
	}
	if j := decimalInt(b, i); j > i {
		return j
	}
	return 0
}

func matchReal(b []byte) int {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	j := decimalInt(b, i)
	if j == i {
		return 0
	}
	real := false
	if j < len(b) && b[j] == '.' {
		real = true
		j = digitRun(b, j+1, isDecByte)
	}
	if j < len(b) && isExponentByte(b[j]) {
		k := j + 1
		if k < len(b) && (b[k] == '+' || b[k] == '-') {
			k++
		}
		if e := digitRun(b, k, isDecByte); e > k {
			real = true
			j = e
		}
	}
	if !real {
		return 0
	}
	return j
}

func matchTimestamp(b []byte) int {
	if !digitsAt(b, 0, 4) || len(b) < 5 {
		return 0
	}
	switch b[4] {
	case 'T':
		return 5
	case '-':
	default:
		return 0
	}
	if !digitsAt(b, 5, 2) || len(b) < 8 {
		return 0
	}
	switch b[7] {
	case 'T':
		return 8
	case '-':
	default:
		return 0
	}
	if !digitsAt(b, 8, 2) {
		return 0
	}
	i := 10
	if i >= len(b) || b[i] != 'T' {
		return i
	}
	i++
	if !digitsAt(b, i, 2) || !byteAt(b, i+2, ':') || !digitsAt(b, i+3, 2) {
		return i
	}
	i += 5
	if byteAt(b, i, ':') {
		if !digitsAt(b, i+1, 2) {
			return 0
		}
		i += 3
		if byteAt(b, i, '.') {
			j := i + 1
			for j < len(b) && isDecByte(b[j]) {
				j++
			}
			if j == i+1 {
				return 0
			}
			i = j
		}
	}
	switch {
	case byteAt(b, i, 'Z'):
		return i + 1
	case (byteAt(b, i, '+') || byteAt(b, i, '-')) && digitsAt(b, i+1, 2) && byteAt(b, i+3, ':') && digitsAt(b, i+4, 2):
		return i + 6
	}
	return 0
}

// decimalInt matches "0" or a nonzero digit followed by digits and single
// underscore separators.
func decimalInt(b []byte, i int) int {
	if i >= len(b) {
		return i
	}
	if b[i] == '0' {
		return i + 1
	}
	return digitRun(b, i, isDecByte)
}

// digitRun matches digits separated by single underscores starting at i.
func digitRun(b []byte, i int, isDigit func(byte) bool) int {
	if i >= len(b) || !isDigit(b[i]) {
		return i
	}
	i++
	for i < len(b) {
		switch {
		case isDigit(b[i]):
			i++
		case b[i] == '_' && i+1 < len(b) && isDigit(b[i+1]):
			i += 2
		default:
			return i
		}
	}
	return i
}

func hasRadixPrefix(b []byte, radix byte) bool {
	return len(b) >= 2 && b[0] == '0' && (b[1] == radix || b[1] == radix-'a'+'A')
}

func digitsAt(b []byte, i, n int) bool {
	if i+n > len(b) {
		return false
	}
	for _, c := range b[i : i+n] {
		if !isDecByte(c) {
			return false
		}
	}
	return true
}

func byteAt(b []byte, i int, c byte) bool {
	return i < len(b) && b[i] == c
}

func isDecByte(c byte) bool {
	return '0' <= c && c <= '9'
}

func isBinByte(c byte) bool {
	return c == '0' || c == '1'
}

func isHexByte(c byte) bool {
	return isDecByte(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isExponentByte(c byte) bool {
	return c == 'e' || c == 'E' || c == 'd' || c == 'D'
}
