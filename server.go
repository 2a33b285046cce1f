package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"gregoryjjb/camelot/roundtable"
	"gregoryjjb/camelot/script"
)

// maxScriptBytes bounds the body of a commands request.
const maxScriptBytes = 64 << 10

type BuildInfo struct {
	Version    string    `json:"version"`
	BuildTime  time.Time `json:"build_time"`
	CommitHash string    `json:"commit_hash"`
}

/////////////////////
// Response helpers

type errorBody struct {
	Error string `json:"error"`
}

func RespondError(w http.ResponseWriter, status int, err error) {
	RespondJSONStatus(w, status, errorBody{Error: err.Error()})
}

func RespondJSON(w http.ResponseWriter, body any) {
	RespondJSONStatus(w, http.StatusOK, body)
}

func RespondJSONStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// StatusFor maps an error onto the HTTP status it is reported with.
func StatusFor(err error) int {
	var syntaxErr *script.SyntaxError
	var preconditionErr *roundtable.PreconditionError

	switch {
	case errors.Is(err, ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, ErrExists):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.As(err, &syntaxErr):
		return http.StatusBadRequest
	case errors.As(err, &preconditionErr), errors.Is(err, script.ErrNoSnapshot):
		return http.StatusConflict
	case errors.Is(err, ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(w http.ResponseWriter, err error) {
	RespondError(w, StatusFor(err), err)
}

type CommandsResponse struct {
	Outputs []string   `json:"outputs"`
	Error   string     `json:"error,omitempty"`
	Table   TableState `json:"table"`
}

// NewRouter builds the API routes on top of tables.
func NewRouter(tables *Tables, build BuildInfo) chi.Router {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(&log.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, build)
		})

		r.Get("/tables", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, tables.Names())
		})

		r.Route("/tables/{name}", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				s, err := tables.Create(chi.URLParam(r, "name"))
				if err != nil {
					respondErr(w, err)
					return
				}

				st, err := s.State(r.Context())
				if err != nil {
					respondErr(w, err)
					return
				}
				RespondJSONStatus(w, http.StatusCreated, st)
			})

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				s, err := tables.Get(chi.URLParam(r, "name"))
				if err != nil {
					respondErr(w, err)
					return
				}

				st, err := s.State(r.Context())
				if err != nil {
					respondErr(w, err)
					return
				}
				RespondJSON(w, st)
			})

			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				if err := tables.Delete(chi.URLParam(r, "name")); err != nil {
					respondErr(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Post("/commands", func(w http.ResponseWriter, r *http.Request) {
				s, err := tables.Get(chi.URLParam(r, "name"))
				if err != nil {
					respondErr(w, err)
					return
				}

				cmds, err := script.Parse(http.MaxBytesReader(w, r.Body, maxScriptBytes))
				if err != nil {
					respondErr(w, err)
					return
				}

				outputs, st, err := s.Exec(r.Context(), cmds)
				resp := CommandsResponse{
					Outputs: outputs,
					Table:   st,
				}
				if resp.Outputs == nil {
					resp.Outputs = []string{}
				}

				if err != nil {
					status := StatusFor(err)
					if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable || status == http.StatusGone {
						respondErr(w, err)
						return
					}
					resp.Error = err.Error()
					RespondJSONStatus(w, status, resp)
					return
				}
				RespondJSON(w, resp)
			})

			r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
				s, err := tables.Get(chi.URLParam(r, "name"))
				if err != nil {
					respondErr(w, err)
					return
				}
				RespondJSON(w, s.History())
			})

			r.Get("/ws", createWebsocketHandler(tables))
		})
	})

	return r
}

// StartServer serves the API until ctx is cancelled.
func StartServer(ctx context.Context, config *Config, build BuildInfo, tables *Tables) error {
	srv := &http.Server{
		Addr:    config.Address(),
		Handler: NewRouter(tables, build),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("listen", srv.Addr).Msg("launching server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
