package segtree

import "cmp"

// Number 约束了可以参与求和与标量缩放的数值类型。
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Integer 约束了可以参与取模运算的整数类型。
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Aggregate 定义线段树的聚合策略：一个满足结合律的合并函数与它的幺元。
// Combine 必须满足 Combine(Combine(a,b),c) == Combine(a,Combine(b,c))，
// Identity 必须满足 Combine(Identity, x) == x。求和、最小值、最大值、
// 最大公约数都满足该约束。
type Aggregate[T any] struct {
	Combine  func(a, b T) T
	Identity T
}

// Sum 求和聚合，幺元为 0。
func Sum[T Number]() Aggregate[T] {
	return Aggregate[T]{
		Combine:  func(a, b T) T { return a + b },
		Identity: 0,
	}
}

// Min 区间最小值聚合。
// identity 必须是该类型的"正无穷"，例如 math.MaxInt64 或 math.Inf(1)。
func Min[T cmp.Ordered](identity T) Aggregate[T] {
	return Aggregate[T]{
		Combine:  func(a, b T) T { return min(a, b) },
		Identity: identity,
	}
}

// Max 区间最大值聚合。
// identity 必须是该类型的"负无穷"，例如 math.MinInt64 或 math.Inf(-1)。
func Max[T cmp.Ordered](identity T) Aggregate[T] {
	return Aggregate[T]{
		Combine:  func(a, b T) T { return max(a, b) },
		Identity: identity,
	}
}

// GCD 最大公约数聚合，幺元为 0 (gcd(0, x) == x)。
func GCD[T Integer]() Aggregate[T] {
	return Aggregate[T]{
		Combine:  gcd[T],
		Identity: 0,
	}
}

// gcd 欧几里得辗转相除，结果归一化为非负。
func gcd[T Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
