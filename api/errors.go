package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"jackpot/service"

	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Kind           service.ErrorKind `json:"kind"`
	Message        string            `json:"message"`
	HoursRemaining int64             `json:"hoursRemaining,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput, service.KindInsufficientFunds, service.KindWagerExceedsPool:
		return http.StatusBadRequest
	case service.KindAccountNotFound, service.KindNotFound:
		return http.StatusNotFound
	case service.KindCooldownActive:
		return http.StatusTooManyRequests
	case service.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error body. Internal details never reach the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Kind: service.KindInternal, Message: "internal error"}

	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal {
		body = errorBody{
			Kind:           svcErr.Kind,
			Message:        svcErr.Message,
			HoursRemaining: svcErr.HoursRemaining,
		}
	}

	status := statusFor(body.Kind)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"requestId": requestIDFrom(r.Context()),
			"path":      r.URL.Path,
			"error":     err,
		}).Error("Request failed")
	}

	writeJSON(w, status, errorResponse{Error: body})
}

func writeInvalidInput(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, &service.Error{Kind: service.KindInvalidInput, Message: message})
}
