// Package stackcalc implements a math interpreter with variables, functions,
// range-generated arrays, and calculus.
//
// Statements are evaluated in a single pass by a precedence automaton with a
// value stack and an operator stack; there is no syntax tree. "2 + 3 * 4" is
// 14, "2 x y" is a multiplication of three terms, and "-2^2" is -4 because a
// minus with no left operand negates whatever follows it.
//
//	let x = 3
//	let a[5] = 1                  (a is now {0, 0, 0, 0, 0, 1})
//	def f(x, y) = x^2 + y
//	[0 <= t <= 1 <> 0.25] (t^2)   (five elements)
//	poly p = (1, 0, 3)
//	p'(2)                         (12)
//	p(interval(0, 1))             (2)
//
// Evaluation is generic over the element type through the Arith type
// manager. Float64 and BigFloat are provided.
package stackcalc
