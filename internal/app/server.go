package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vk/declpipe/internal/ctxlog"
)

// maxRequestBytes bounds conversion request bodies. Real-world pipeline
// definitions are a few kilobytes; a megabyte is already generous.
const maxRequestBytes = 1 << 20

type convertMode int

const (
	modeValidate convertMode = iota
	modeJSON
	modeSource
)

// serve runs the validation HTTP API until ctx is cancelled.
func (a *App) serve(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/health", a.handleHealth)
	r.Post("/validate", a.handleConvert(modeValidate))
	r.Post("/to-json", a.handleConvert(modeJSON))
	r.Post("/to-source", a.handleConvert(modeSource))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from ctx so handlers reach the app's
		// logger through ctxlog.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Validation server starting.", "address", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("validation server failed: %w", err)
	}
	return nil
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ctxlog.FromContext(r.Context()).Debug("Request handled.",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleConvert serves the three conversion endpoints. The body is a raw
// pipeline definition; the response is always HTTP 200 with a Result
// envelope, so callers distinguish verdicts by the result field rather
// than the status code.
func (a *App) handleConvert(mode convertMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			a.writeResult(w, failureMessage("Failed to read request body."))
			return
		}

		out := a.Analyze("request.jenkinsfile", src)
		if out.NoPipeline {
			a.writeResult(w, failureMessage("No pipeline block found in the provided source."))
			return
		}
		if !out.Valid {
			a.writeResult(w, failureResult(out.Diags))
			return
		}

		res := Result{Result: ResultSuccess}
		switch mode {
		case modeJSON:
			b, err := out.Pipeline.ToJSON()
			if err != nil {
				a.writeResult(w, failureMessage("Failed to serialize the pipeline model."))
				return
			}
			res.JSON = b
		case modeSource:
			res.Source = out.Pipeline.SourceText()
		}
		a.writeResult(w, res)
	}
}

func (a *App) writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		a.logger.Error("Failed to encode response.", "error", err)
	}
}
