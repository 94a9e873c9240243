package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-engine/internal/auth"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

type RouterOptions struct {
	Log            logrus.FieldLogger
	Store          *session.Store
	Issuer         *auth.Issuer
	Limits         Limits
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions) http.Handler {
	game := NewGameHandler(
		opts.Log, opts.Store, opts.Issuer, opts.Limits, opts.AllowedOrigins,
	)
	owned := func(h http.HandlerFunc) http.Handler {
		return middleware.Wrap(h, middleware.RequireSessionToken(opts.Log, opts.Issuer))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/status", game.Status)
	mux.HandleFunc("GET /v1/presets", game.Presets)

	mux.HandleFunc("POST /v1/game", game.NewGame)
	mux.Handle("GET /v1/game/{id}", owned(game.Fetch))
	mux.Handle("GET /v1/game/{id}/neighbors", owned(game.Neighbors))
	mux.Handle("POST /v1/game/{id}/open", owned(game.Open))
	mux.Handle("POST /v1/game/{id}/flag", owned(game.Flag))
	mux.Handle("POST /v1/game/{id}/batch", owned(game.Batch))

	mux.Handle("GET /v1/game/{id}/connect", owned(game.ConnectWS))

	return middleware.Wrap(mux,
		middleware.Cors(opts.AllowedOrigins),
		middleware.Logging(opts.Log),
	)
}
