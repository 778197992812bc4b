package rest

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"plansey/internal/rest/res"
	"plansey/internal/service"
)

func WriteErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrBadArguments):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthenticated):
		res.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrAccountDisabled):
		res.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrAlreadyExists):
		res.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error("request failed", zap.Error(err))
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
