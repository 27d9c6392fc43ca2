package eventloop

import "sync/atomic"

// Token identifies one generation of a repeating asynchronous flow.
type Token uint64

// Generation invalidates callbacks that belong to a superseded flow.
// Capture a token when scheduling work, compare it when the work fires:
//
//	tok := gen.Bump()
//	sched.AfterFunc(d, func() {
//		if !gen.Valid(tok) {
//			return
//		}
//		...
//	})
type Generation struct {
	n atomic.Uint64
}

// Bump starts a new generation and returns its token. Every token handed
// out earlier becomes invalid.
func (g *Generation) Bump() Token {
	return Token(g.n.Add(1))
}

// Current returns the live token without changing it.
func (g *Generation) Current() Token {
	return Token(g.n.Load())
}

// Valid reports whether tok is still the live generation.
func (g *Generation) Valid(tok Token) bool {
	return Token(g.n.Load()) == tok
}
