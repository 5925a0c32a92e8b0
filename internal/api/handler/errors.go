package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/treasurehunt-go/internal/api/apierr"
)

// writeError writes an API error, logging anything that maps to a 500
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}
