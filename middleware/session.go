// Package middleware wires goSession managers into net/http handler
// chains, committing session cookies before the first response byte.
package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// committingWriter intercepts the first header or body write and commits
// the session right before it, since Set-Cookie headers are frozen once
// WriteHeader runs.
type committingWriter struct {
	http.ResponseWriter
	mgr       *goSession.Manager
	session   *goSession.Session
	committed bool
}

func (cw *committingWriter) commit() {
	if cw.committed {
		return
	}
	cw.committed = true
	_ = cw.mgr.Commit(cw.ResponseWriter, cw.session)
}

func (cw *committingWriter) WriteHeader(statusCode int) {
	cw.commit()
	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *committingWriter) Write(p []byte) (int, error) {
	cw.commit()
	return cw.ResponseWriter.Write(p)
}

// Session loads a lazy session for every request, exposes it via
// goSession.SessionFromContext, and commits it when the handler responds.
// Handlers that finish without writing anything still get their session
// committed before the implicit 200.
func Session(mgr *goSession.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mgr == nil {
				next.ServeHTTP(w, r)
				return
			}

			session := mgr.Load(r)
			cw := &committingWriter{ResponseWriter: w, mgr: mgr, session: session}

			ctx := goSession.WithSession(r.Context(), session)
			next.ServeHTTP(cw, r.WithContext(ctx))

			cw.commit()
		})
	}
}
