// Package middleware provides the HTTP middleware applied to service modules.
package middleware

import "net/http"

// Func wraps a handler.
type Func func(http.Handler) http.Handler

// Chain applies middleware in the order it was added: the first Func sees
// the request first.
type Chain []Func

// Then wraps h with every Func in the chain.
func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
