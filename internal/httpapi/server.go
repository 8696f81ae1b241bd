package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"textclassd/pkg/types"
)

// ServiceName and ServiceVersion identify the daemon in /info responses.
const (
	ServiceName    = "textclassd"
	ServiceVersion = "1.0.0"
)

// Service defines the predictor methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, text string) (types.PredictResponse, error)
	PredictBatch(ctx context.Context, texts []string) (types.BatchPredictResponse, error)
	Info() types.ModelInfo
	Models() []types.ModelVersion
	LatestVersion() string
	Load(ctx context.Context, version string) (types.ModelVersion, error)
	Unload()
	Ready() bool
}

// NewMux builds the HTTP router over the given service.
func NewMux(svc Service) http.Handler {
	start := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(RequestLogger)
	r.Use(MetricsMiddleware)

	r.Post("/predict", handlePredict(svc))
	r.Post("/predict/batch", handlePredictBatch(svc))
	r.Get("/info", handleInfo(svc, start))
	r.Get("/models", handleModels(svc))
	r.Post("/models/load", handleLoad(svc))
	r.Post("/models/unload", handleUnload(svc))
	r.Get("/health", handleHealth(start))

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and body size before decoding into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// handlePredict classifies a single text.
//
// @Summary      Classify one text
// @Accept       json
// @Produce      json
// @Param        request body types.PredictRequest true "text to classify"
// @Success      200 {object} types.PredictResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /predict [post]
func handlePredict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PredictRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeJSONError(w, http.StatusBadRequest, "text is required")
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Predict(ctx, req.Text)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// handlePredictBatch classifies up to the configured maximum of texts in one
// call. The ceiling is enforced here, before any inference runs.
//
// @Summary      Classify a batch of texts
// @Accept       json
// @Produce      json
// @Param        request body types.BatchPredictRequest true "texts to classify (max 100)"
// @Success      200 {object} types.BatchPredictResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /predict/batch [post]
func handlePredictBatch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BatchPredictRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Texts) == 0 {
			writeJSONError(w, http.StatusBadRequest, "texts is required")
			return
		}
		if len(req.Texts) > maxBatchSize {
			writeJSONError(w, http.StatusBadRequest,
				"batch size "+strconv.Itoa(len(req.Texts))+" exceeds limit "+strconv.Itoa(maxBatchSize))
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.PredictBatch(ctx, req.Texts)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServiceError(w, err)
			return
		}
		res.Timestamp = time.Now().Format(time.RFC3339)
		writeJSON(w, res)
	}
}

// handleInfo reports service and model state.
//
// @Summary      Service and model info
// @Produce      json
// @Success      200 {object} types.InfoResponse
// @Router       /info [get]
func handleInfo(svc Service, start time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.InfoResponse{
			Service: types.ServiceInfo{
				Name:          ServiceName,
				Version:       ServiceVersion,
				UptimeSeconds: time.Since(start).Seconds(),
			},
			Model: svc.Info(),
		})
	}
}

// handleModels lists the registry catalog.
//
// @Summary      List catalogued model versions
// @Produce      json
// @Success      200 {object} types.ModelsResponse
// @Router       /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.Models(), Latest: svc.LatestVersion()})
	}
}

// handleLoad loads a named version, or the best one when the request names
// none.
//
// @Summary      Load a model version
// @Accept       json
// @Produce      json
// @Param        request body types.LoadRequest false "version to load; empty for best"
// @Success      200 {object} types.LoadResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /models/load [post]
func handleLoad(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Body is optional: an empty request loads the best version.
		var req types.LoadRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		v, err := svc.Load(ctx, req.Version)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, types.LoadResponse{Status: "loaded", Version: v.Version, ValAccuracy: v.ValAccuracy})
	}
}

// handleUnload releases the active model.
//
// @Summary      Unload the active model
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /models/unload [post]
func handleUnload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Unload()
		writeJSON(w, map[string]string{"status": "unloaded"})
	}
}

// handleHealth reports liveness and uptime.
//
// @Summary      Health check
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Router       /health [get]
func handleHealth(start time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HealthResponse{
			Status:        "healthy",
			UptimeSeconds: time.Since(start).Seconds(),
			Timestamp:     time.Now().Format(time.RFC3339),
		})
	}
}
