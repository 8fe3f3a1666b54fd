package util

import "math"

// AddInt64 returns a+b and whether the sum fits in an int64.
func AddInt64(a, b int64) (int64, bool) {
	sum := a + b
	// overflow happened iff both operands have the same sign and the sum's sign differs
	if (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0) {
		return 0, false
	}
	return sum, true
}

// MulInt64 returns a*b and whether the product fits in an int64.
func MulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}
