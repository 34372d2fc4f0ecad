// cmd/mcp-server/main.go: HTTP tool endpoint for symalg
//
// Exposes the symalg tools to agent frameworks. Expressions are sent either
// as formula text ("x^2+2*x") or in the tree form returned by every call.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -timeout 10s
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-call computation limit")
	verbose := flag.Bool("verbose", false, "Log every tool call")
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/tool", toolHandler(*timeout))

	// GET /schema: return tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, symalg.ToolSpec())
	})

	// GET /health: liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Infof("symalg tool server listening on %s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      *timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// toolHandler serves POST /tool. Each call runs under the request context
// bounded by timeout, so a dropped client or a runaway simplification ends
// with a ComputationAborted error.
func toolHandler(timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req symalg.ToolRequest
		if err := dec.Decode(&req); err != nil {
			badRequest(w, err.Error())
			return
		}
		if dec.More() {
			badRequest(w, "invalid JSON: trailing data")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		start := time.Now()
		resp := symalg.HandleToolCall(ctx, req)
		log.WithFields(log.Fields{
			"tool":    req.Tool,
			"elapsed": time.Since(start),
			"kind":    resp.Kind,
		}).Debug("tool call")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
