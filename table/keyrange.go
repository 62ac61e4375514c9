package table

// IncrementKey returns key with its final code point incremented by one. It
// is used to compute the exclusive bound just past a key, both for prefix
// ranges and for advancing the scan cursor past the last row seen.
//
// The increment is a single rune bump: it is only a tight bound when the
// final character is a single-byte code point with room to grow ("z" becomes
// "{"); a multi-byte final rune or a code point at the ceiling produces a
// bound that is not byte-wise adjacent. Keys composed from ASCII-safe
// alphabets are unaffected.
func IncrementKey(key string) string {
	if key == "" {
		return key
	}
	runes := []rune(key)
	runes[len(runes)-1]++
	return string(runes)
}

// PrefixRange derives the [start, stop) interval covering exactly the keys
// that begin with prefix. Same single-code-point caveat as IncrementKey.
func PrefixRange(prefix string) (start, stop string) {
	if prefix == "" {
		return "", ""
	}
	return prefix, IncrementKey(prefix)
}
