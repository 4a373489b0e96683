package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
	"github.com/BuzzLyutic/team-dashboard-api/internal/service"
	"github.com/BuzzLyutic/team-dashboard-api/pkg/respond"
)

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrorUnavailable):
		logger.Warn("backend unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "backend unavailable")
	default:
		logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
