package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const visitorCookie = "visitor_id"

// visitorCookieMaxAge keeps the anonymous cart around for a year.
const visitorCookieMaxAge = 365 * 24 * 60 * 60

type visitorKey struct{}

// Visitor assigns every request a stable anonymous visitor ID via cookie.
// The ID keys the visitor's cart, so carts survive restarts and work
// without an account.
func Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(visitorCookie); err == nil {
			id = cookie.Value
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), visitorKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorID returns the visitor ID assigned by Visitor, or "".
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}
