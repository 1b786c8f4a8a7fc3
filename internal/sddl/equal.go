package sddl

// Equal reports whether a and b describe the same variable tree field for
// field. Parent links and attached extra values are not compared.
func Equal(a, b *VarNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.name != b.name ||
		!a.datatype.Equal(b.datatype) ||
		a.description != b.description ||
		a.direction != b.direction ||
		a.optionality != b.optionality ||
		!equalFloat(a.minValue, b.minValue) ||
		!equalFloat(a.maxValue, b.maxValue) ||
		a.displayHint != b.displayHint ||
		!equalString(a.regex, b.regex) ||
		a.units != b.units {
		return false
	}
	if !Equal(a.element, b.element) {
		return false
	}
	if a.NumMembers() != b.NumMembers() {
		return false
	}
	am, bm := a.Members(), b.Members()
	for i := range am {
		if !Equal(am[i], bm[i]) {
			return false
		}
	}
	return true
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
