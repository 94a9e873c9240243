package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// OriginAllowed reports whether origin is listed. A "*" entry allows any
// origin.
func OriginAllowed(allowedOrigins []string, origin string) bool {
	return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
}

func Cors(allowedOrigins []string) Middleware {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return OriginAllowed(allowedOrigins, origin)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	return cors.New(options).Handler
}
