package webserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/common-creation/tokencounter/internal/logging"
	"github.com/common-creation/tokencounter/internal/mcp"
	"github.com/common-creation/tokencounter/internal/tokens"
	"github.com/common-creation/tokencounter/internal/webui"
)

// APIPath is the JSON endpoint the standalone page posts to.
const APIPath = "/api/token-counter"

const maxRequestBytes = 1 << 20

// registerRoutes sets up the page, API and MCP routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config, estimator mcp.Estimator, server *mcpsdk.Server, logger *log.Logger) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /{$}", handlePage(logger))
	mux.HandleFunc("POST "+APIPath, handleTokenCounter(cfg, estimator))

	mcpHandler := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return server
	}, nil)
	mux.Handle(cfg.MCPPath, mcpHandler)
}

// apiRequest mirrors tokens.Request but keeps prompt_text optional so a
// missing field can be told apart from an empty prompt.
type apiRequest struct {
	PromptText   *string `json:"prompt_text"`
	ResponseText string  `json:"response_text"`
	Model        string  `json:"model"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handlePage(logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		page, err := webui.StandalonePage(APIPath)
		if err != nil {
			logger.Error("Failed to render widget page", "error", err)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(webui.ErrorHTML(err)))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}
}

func handleTokenCounter(cfg Config, estimator mcp.Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body apiRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		if body.PromptText == nil {
			writeError(w, http.StatusBadRequest, "prompt_text is required")
			return
		}

		req := tokens.Request{
			PromptText:   *body.PromptText,
			ResponseText: body.ResponseText,
			Model:        body.Model,
		}
		if req.Model == "" {
			req.Model = string(cfg.DefaultModel)
		}

		report, err := estimator.Estimate(r.Context(), req)
		if err != nil {
			var estimateErr *tokens.EstimateError
			if errors.As(err, &estimateErr) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			logging.FromContext(r.Context()).Error("Token counter request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to count tokens")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
