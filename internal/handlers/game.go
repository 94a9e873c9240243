package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-engine/internal/auth"
	"github.com/vancomm/minesweeper-engine/internal/command"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

// Batches larger than this are rejected without being parsed.
const maxBatchBytes = 64 << 10

type GameHandler struct {
	log      logrus.FieldLogger
	store    *session.Store
	issuer   *auth.Issuer
	limits   Limits
	decoder  *schema.Decoder
	upgrader websocket.Upgrader
}

func NewGameHandler(
	log logrus.FieldLogger,
	store *session.Store,
	issuer *auth.Issuer,
	limits Limits,
	allowedOrigins []string,
) *GameHandler {
	return &GameHandler{
		log:     log,
		store:   store,
		issuer:  issuer,
		limits:  limits,
		decoder: newDecoder(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

func (g *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.log, StatusDTO{Status: "ok", Sessions: g.store.Len()})
}

func (g *GameHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.log, presetList())
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	var dto CreateNewGameDTO
	if err := decodeQuery(g.decoder, &dto, r.URL.Query()); err != nil {
		sendError(w, g.log, err)
		return
	}
	params, err := dto.Params(g.limits)
	if err != nil {
		sendError(w, g.log, err)
		return
	}

	s, err := g.store.Create(params)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	token, err := g.issuer.Issue(s.ID)
	if err != nil {
		g.store.Delete(s.ID)
		sendError(w, g.log, fmt.Errorf("unable to issue session token: %w", err))
		return
	}

	sendJSONOrLog(w, g.log, NewGameDTO{Token: token, Session: s.View()})
}

// session fetches the session named by the {id} path value.
func (g *GameHandler) session(r *http.Request) (*session.Session, error) {
	return g.store.Lookup(r.PathValue("id"))
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSONOrLog(w, g.log, s.View())
}

func (g *GameHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	var pos PositionDTO
	if err := decodeQuery(g.decoder, &pos, r.URL.Query()); err != nil {
		sendError(w, g.log, err)
		return
	}
	s, err := g.session(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	var neighbors []mines.Point
	_, err = s.Do(func(b *mines.Board) (err error) {
		neighbors, err = b.NeighborsOf(pos.X, pos.Y)
		return
	})
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSONOrLog(w, g.log, NeighborsDTO{X: pos.X, Y: pos.Y, Neighbors: neighbors})
}

// move runs a single cell command from the x and y query parameters.
func (g *GameHandler) move(kind command.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pos PositionDTO
		if err := decodeQuery(g.decoder, &pos, r.URL.Query()); err != nil {
			sendError(w, g.log, err)
			return
		}
		s, err := g.session(r)
		if err != nil {
			sendError(w, g.log, err)
			return
		}
		cmd := command.Command{Kind: kind, X: pos.X, Y: pos.Y}
		view, err := s.Do(cmd.Apply)
		if err != nil {
			sendError(w, g.log, err)
			return
		}
		g.log.WithFields(logrus.Fields{
			"session": s.ID,
			"command": cmd.String(),
			"state":   view.Snapshot.State,
		}).Debug("applied command")
		sendJSONOrLog(w, g.log, view)
	}
}

func (g *GameHandler) Open(w http.ResponseWriter, r *http.Request) {
	g.move(command.Reveal)(w, r)
}

func (g *GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	g.move(command.Flag)(w, r)
}

// runBatch parses the whole batch before touching the board, so a syntax
// error anywhere leaves the game unchanged.
func (g *GameHandler) runBatch(s *session.Session, text string) (session.View, error) {
	cmds, err := command.ParseLines(text)
	if err != nil {
		return session.View{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return s.Do(func(b *mines.Board) error {
		return command.ApplyAll(b, cmds)
	})
}

func (g *GameHandler) Batch(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		sendError(w, g.log, fmt.Errorf("%w: %s", errBadRequest, err))
		return
	}
	view, err := g.runBatch(s, string(body))
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSONOrLog(w, g.log, view)
}

// ConnectWS treats every text frame as a batch of commands and answers each
// with the session state, or with an error object if the batch failed.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, err := g.session(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	c, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("upgrade: ", err)
		return
	}
	defer c.Close()
	c.SetReadLimit(maxBatchBytes)

	log := g.log.WithField("session", s.ID)
	log.Debug("websocket connected")

	if err := c.WriteJSON(s.View()); err != nil {
		log.Warn("write: ", err)
		return
	}
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read: ", err)
			}
			break
		}
		if mt != websocket.TextMessage {
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(
				websocket.CloseUnsupportedData, "text frames only",
			))
			if err != nil {
				log.Debug("write close: ", err)
			}
			break
		}
		log.Debug("\t> ", string(message))

		var reply any
		view, err := g.runBatch(s, string(message))
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				log.WithError(err).Error("batch failed")
				break
			}
			reply = wrapError(err)
		} else {
			reply = view
		}
		if err := c.WriteJSON(reply); err != nil {
			log.Warn("write: ", err)
			break
		}
	}
	log.Debug("websocket disconnected")
}
