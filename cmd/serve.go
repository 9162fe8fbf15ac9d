package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/csvio"
)

var serveFlags struct {
	port int
	data string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a merged record set over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		table, err := csvio.ReadTable(serveFlags.data)
		if err != nil {
			return err
		}
		records := tableJSON(table)
		zap.L().Info("records loaded", zap.String("path", serveFlags.data), zap.Int("count", len(records)))

		r := chi.NewRouter()
		r.Use(chimiddleware.RealIP)
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": len(records)})
		})

		r.Get("/api/records", func(w http.ResponseWriter, req *http.Request) {
			limit := queryInt(req, "limit", 50)
			offset := queryInt(req, "offset", 0)
			if limit <= 0 || limit > 500 {
				limit = 50
			}
			if offset < 0 || offset > len(records) {
				offset = len(records)
			}
			end := offset + limit
			if end > len(records) {
				end = len(records)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"total":   len(records),
				"offset":  offset,
				"records": records[offset:end],
			})
		})

		r.Get("/api/records/random", func(w http.ResponseWriter, req *http.Request) {
			count := queryInt(req, "count", 1)
			if count <= 0 || count > len(records) {
				count = min(10, len(records))
			}
			picks := rand.Perm(len(records))[:count]
			out := make([]map[string]string, count)
			for i, p := range picks {
				out[i] = records[p]
			}
			writeJSON(w, http.StatusOK, map[string]any{"records": out})
		})

		port := serveFlags.port
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// tableJSON turns table rows into column-keyed maps, dropping empty cells so
// responses stay compact. Rows shorter than the header are padded implicitly.
func tableJSON(t *csvio.Table) []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Columns))
		for j, col := range t.Columns {
			if j < len(row) && row[j] != "" {
				m[col] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(req *http.Request, key string, fallback int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.data, "data", "merged.csv", "CSV artifact to serve")
	rootCmd.AddCommand(serveCmd)
}
