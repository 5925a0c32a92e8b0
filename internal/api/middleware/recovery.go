package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/treasurehunt-go/internal/api/apierr"
	"github.com/mcoot/treasurehunt-go/internal/middleware"
)

// Recovery wraps the shared panic recovery so API clients always get a JSON
// INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanicResponse)
}

func writePanicResponse(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Cache-Control", "no-store")
	apierr.WriteError(w, apierr.NewInternalError())
}
