package diff

// First returns the cursor for the first region of result, or NoRegion.
func First(result Result) Cursor {
	if len(result) == 0 {
		return NoRegion
	}
	return 0
}

// Next moves the cursor to the following region. At the last region it stays
// put; it does not wrap around. A cursor that points nowhere enters the result
// at its first region.
func Next(c Cursor, result Result) Cursor {
	if len(result) == 0 {
		return NoRegion
	}
	if c < 0 {
		return 0
	}
	if last := Cursor(len(result) - 1); c >= last {
		return last
	}
	return c + 1
}

// Prev moves the cursor to the preceding region. At the first region it
// stays put. A cursor that points nowhere enters the result at its first
// region.
func Prev(c Cursor, result Result) Cursor {
	if len(result) == 0 {
		return NoRegion
	}
	if c <= 0 {
		return 0
	}
	if last := Cursor(len(result) - 1); c > last {
		return last
	}
	return c - 1
}

// Clamp keeps a cursor carried over from a previous result pointing at the
// same index of the new one, or at its last region if the new result is
// shorter.
func Clamp(c Cursor, result Result) Cursor {
	switch {
	case len(result) == 0:
		return NoRegion
	case c < 0:
		return 0
	case int(c) >= len(result):
		return Cursor(len(result) - 1)
	default:
		return c
	}
}
