package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/depgraph"
	"github.com/repoatlas/repoatlas/pkg/model"
)

// serveCommand creates the serve command: a read-only HTTP API over one
// scanned model.
func (c *CLI) serveCommand() *cobra.Command {
	var opts scanOpts
	var modelPath, addr string

	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Serve the scanned model over a read-only HTTP API",
		Long: `Scan a repository (or load an exported model) and serve it over HTTP.

Routes:
  GET /healthz              liveness probe
  GET /model                the full model
  GET /assemblies           assemblies only
  GET /assemblies/{id}      one assembly
  GET /packages             packages only
  GET /packages/{id}        one package
  GET /order                dependency order (409 on a cycle)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.modelFromArgs(cmd, args, modelPath, opts)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newAPIHandler(m),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			c.Logger.Infof("Serving %s on %s", m.RepoName, addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&modelPath, "model", "", "read the model from a JSON export instead of scanning")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newAPIHandler builds the chi router for a resolved model. The model is
// immutable once loaded, so handlers share it without locking.
func newAPIHandler(m *model.Model) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "repo": m.RepoName})
	})
	r.Get("/model", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m)
	})
	r.Get("/assemblies", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Assemblies)
	})
	r.Get("/assemblies/{id}", func(w http.ResponseWriter, req *http.Request) {
		if a := m.AssemblyByID(chi.URLParam(req, "id")); a != nil {
			writeJSON(w, http.StatusOK, a)
			return
		}
		writeJSONError(w, http.StatusNotFound, "assembly not found")
	})
	r.Get("/packages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Packages)
	})
	r.Get("/packages/{id}", func(w http.ResponseWriter, req *http.Request) {
		if p := m.PackageByID(chi.URLParam(req, "id")); p != nil {
			writeJSON(w, http.StatusOK, p)
			return
		}
		writeJSONError(w, http.StatusNotFound, "package not found")
	})
	r.Get("/order", func(w http.ResponseWriter, _ *http.Request) {
		order, err := depgraph.Build(m.Packages).Order()
		if err != nil {
			var cycle *depgraph.CycleError
			if errors.As(err, &cycle) {
				writeJSON(w, http.StatusConflict, map[string]any{
					"error": "dependency cycle",
					"cycle": cycle.Cycle,
				})
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
