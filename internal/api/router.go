package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/store"
)

// Prefix is where NewRouter mounts the endpoints.
const Prefix = "/api/v1"

// maxBody caps request bodies; attachments are base64 inside the JSON.
const maxBody = 64 << 20

// Service is what the router serves. *store.Store implements it.
type Service interface {
	NextSerialNumber(ctx context.Context) (string, error)
	NextMeasurementNumber(ctx context.Context) (string, error)
	Parties(ctx context.Context) ([]model.Party, error)
	Products(ctx context.Context, category string) ([]model.Product, error)
	Designs(ctx context.Context) ([]model.Design, error)
	SubmitMeasurement(ctx context.Context, m model.Measurement) (int64, error)
	Measurement(ctx context.Context, id int64) (model.Measurement, error)
}

type handler struct {
	svc    Service
	logger *zap.Logger
}

// NewRouter serves svc under Prefix. token, when set, is required as a
// bearer token on every request.
func NewRouter(svc Service, token string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route(Prefix+"/production", func(r chi.Router) {
		if token != "" {
			r.Use(requireToken(token))
		}
		r.Get("/measurements/next-serial-number", h.nextSerial)
		r.Get("/measurements/next-number", h.nextMeasurementNumber)
		r.Post("/measurements", h.createMeasurement)
		r.Get("/measurements/{id}", h.getMeasurement)
		r.Get("/parties", h.parties)
		r.Get("/products", h.products)
		r.Get("/designs", h.designs)
	})
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != token {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// fail maps a service error to a status code.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNoSerialPrefix):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *handler) nextSerial(w http.ResponseWriter, r *http.Request) {
	serial, err := h.svc.NextSerialNumber(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"serial_number": serial})
}

func (h *handler) nextMeasurementNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextMeasurementNumber(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"measurement_number": n})
}

func (h *handler) createMeasurement(w http.ResponseWriter, r *http.Request) {
	var m model.Measurement
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&m); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid measurement: "+err.Error())
		return
	}
	if !m.Type.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid measurement_type")
		return
	}
	if m.PartyID == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "party_id is required")
		return
	}
	if len(m.Items) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "at least one item is required")
		return
	}

	id, err := h.svc.SubmitMeasurement(r.Context(), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *handler) getMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid measurement id")
		return
	}
	m, err := h.svc.Measurement(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handler) parties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.svc.Parties(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(parties))
}

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

// designs only lists active designs; is_active is accepted for compatibility.
func (h *handler) designs(w http.ResponseWriter, r *http.Request) {
	designs, err := h.svc.Designs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(designs))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
