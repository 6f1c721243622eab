package loop

import "sync/atomic"

// Token identifies the generation an operation started in.
type Token uint64

// Generation is a monotonically increasing counter used to discard results
// of operations superseded by a newer one. The zero value is ready to use.
type Generation struct {
	n atomic.Uint64
}

// Next advances the generation and returns the new token.
func (g *Generation) Next() Token {
	return Token(g.n.Add(1))
}

// Current returns the latest token without advancing.
func (g *Generation) Current() Token {
	return Token(g.n.Load())
}

// IsCurrent reports whether no newer token has been issued since t.
func (g *Generation) IsCurrent(t Token) bool {
	return g.n.Load() == uint64(t)
}

// Guard wraps fn so it only runs while t is still current.
func Guard[A, B any](g *Generation, t Token, fn func(A, B)) func(A, B) {
	return func(a A, b B) {
		if g.IsCurrent(t) {
			fn(a, b)
		}
	}
}
