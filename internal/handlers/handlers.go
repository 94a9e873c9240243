package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-engine/internal/command"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.WithError(err).Error("unable to send response")
	}
}

type ErrorDTO struct {
	Error string `json:"error"`
	// Line of a failed batch command, counting from zero.
	Line *int `json:"line,omitempty"`
}

func wrapError(err error) ErrorDTO {
	dto := ErrorDTO{Error: err.Error()}
	var le *command.LineError
	if errors.As(err, &le) {
		dto.Error = le.Err.Error()
		dto.Line = &le.Line
	}
	return dto
}

func statusFor(err error) int {
	var assertion mines.AssertionError
	switch {
	case errors.As(err, &assertion):
		return http.StatusInternalServerError
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStoreFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, mines.ErrInvalidConfiguration),
		errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrNargs),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// sendError answers with the status matching err. Internal errors are logged
// and their text is not sent to the client.
func sendError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := SendJSON(w, wrapError(err)); err != nil {
		log.WithError(err).Error("unable to send error")
	}
}
