package wsctx

// strtrim cuts leading and trailing HTTP whitespace (space, tab, CR, LF)
// from s without allocating.
func strtrim(s string) string {
	for len(s) > 0 && iswsp(s[0]) {
		s = s[1:]
	}
	for len(s) > 0 && iswsp(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func iswsp(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// btsEqualFold reports whether bts equals the ASCII string s under
// case-insensitive comparison.
func btsEqualFold(bts []byte, s string) bool {
	if len(bts) != len(s) {
		return false
	}
	for i := 0; i < len(bts); i++ {
		if lowerASCII(bts[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
