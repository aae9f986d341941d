// Package server exposes the quote engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/loan-quote/internal/cache"
	"github.com/iwvelando/loan-quote/internal/output"
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/datetime"
	"github.com/iwvelando/loan-quote/pkg/validation"
	"go.uber.org/zap"
)

// Response headers set on quote responses.
const (
	HeaderQuoteReference = "X-Quote-Reference"
	HeaderCache          = "X-Cache"
)

// Options configures NewHandler. Engine is required; everything else has a
// default.
type Options struct {
	Logger      *zap.Logger
	Engine      *quote.Engine
	Cache       cache.Cache
	CacheTTL    time.Duration
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	engine      *quote.Engine
	cache       cache.Cache
	cacheTTL    time.Duration
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the quote API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := opts.Engine
	if engine == nil {
		engine = quote.NewEngine(logger, validation.StrictPolicy(), quote.DefaultRateTables())
	}

	store := opts.Cache
	if store == nil {
		store = cache.Nop{}
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		engine:      engine,
		cache:       store,
		cacheTTL:    opts.CacheTTL,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		h.requestLogger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/rates", h.handleRates)
		r.Get("/comparison-rates", h.handleComparisonRates)

		r.Route("/calculate-loan", func(r chi.Router) {
			r.Post("/", h.handleCalculate)
			r.Post("/savings", h.handleSavings)
			r.Post("/schedule.xlsx", h.handleScheduleXLSX)
		})
	})

	return r
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

type validationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

type savingsResponse struct {
	Result  quote.Result  `json:"result"`
	Savings quote.Savings `json:"savings"`
}

// quoteRequest is a decoded and validated calculator request.
type quoteRequest struct {
	input    quote.Input
	schedule bool
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
		"policy":  h.engine.Policy().Name,
	})
}

func (h *handler) handleRates(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.AAGTRates())
}

func (h *handler) handleComparisonRates(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.BankComparisonRates())
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	req, ok := h.decodeQuote(w, r, op)
	if !ok {
		return
	}

	key := cacheKey(h.engine.Policy().Name, req)
	if body, hit := h.cacheGet(r.Context(), key, op); hit {
		w.Header().Set(HeaderCache, "HIT")
		h.writeQuoteBody(w, body)
		return
	}

	result := h.engine.Calculate(req.input)
	if !req.schedule {
		result = result.WithoutSchedule()
	}

	body, err := json.Marshal(result)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode quote: %v", err), op)
		return
	}
	h.cacheSet(r.Context(), key, body, op)

	w.Header().Set(HeaderCache, "MISS")
	h.writeQuoteBody(w, body)
}

func (h *handler) handleSavings(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSavings"

	req, ok := h.decodeQuote(w, r, op)
	if !ok {
		return
	}

	result := h.engine.Calculate(req.input)
	savings := h.engine.SavingsVsBanks(result, req.input)
	if !req.schedule {
		result = result.WithoutSchedule()
	}

	w.Header().Set(HeaderQuoteReference, uuid.NewString())
	h.writeJSON(w, http.StatusOK, savingsResponse{Result: result, Savings: savings})
}

func (h *handler) handleScheduleXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleXLSX"

	start := strings.TrimSpace(r.URL.Query().Get("start"))
	if start != "" {
		if err := datetime.ValidateStartMonth(start); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	req, ok := h.decodeQuote(w, r, op)
	if !ok {
		return
	}

	result := h.engine.Calculate(req.input)
	savings := h.engine.SavingsVsBanks(result, req.input)
	buf, err := output.XLSX(output.Report{
		Input:      req.input,
		Result:     result,
		Savings:    &savings,
		StartMonth: start,
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build workbook: %v", err), op)
		return
	}

	reference := uuid.NewString()
	w.Header().Set(HeaderQuoteReference, reference)
	w.Header().Set("Content-Type", output.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "loan-schedule-"+reference+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write workbook",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

// decodeQuote reads and validates the request body. On failure it has
// already written the response.
func (h *handler) decodeQuote(w http.ResponseWriter, r *http.Request, op string) (quoteRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return quoteRequest{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return quoteRequest{}, false
	}

	fields, schedule, err := decodeLoanFields(data)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return quoteRequest{}, false
	}
	if q := r.URL.Query().Get("schedule"); q != "" {
		schedule = coerceBool(q)
	}

	if h.engine.Policy().Name == constants.PolicyPermissive {
		if fields.LoanPurpose == "" {
			fields.LoanPurpose = constants.PurposeBusiness
		}
		if fields.SecurityType == "" {
			fields.SecurityType = constants.SecurityProperty
		}
	}

	if errs := h.engine.Validate(fields); len(errs) > 0 {
		h.logger.Info("quote request rejected",
			zap.String("op", op),
			zap.Strings("errors", errs),
		)
		h.writeJSON(w, http.StatusBadRequest, validationErrorResponse{Error: errs[0], Errors: errs})
		return quoteRequest{}, false
	}

	return quoteRequest{input: quote.InputFromFields(fields), schedule: schedule}, true
}

func cacheKey(policy string, req quoteRequest) string {
	in := req.input
	return fmt.Sprintf("quote:%s:%s:%s:%d:%s:%s:%t", policy,
		strconv.FormatFloat(in.LoanAmount, 'g', -1, 64),
		strconv.FormatFloat(in.InterestRate, 'g', -1, 64),
		in.LoanTermMonths, in.LoanPurpose, in.SecurityType, req.schedule)
}

func (h *handler) cacheGet(ctx context.Context, key, op string) ([]byte, bool) {
	body, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("cache read failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return body, ok
}

func (h *handler) cacheSet(ctx context.Context, key string, body []byte, op string) {
	if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
		h.logger.Warn("cache write failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (h *handler) writeQuoteBody(w http.ResponseWriter, body []byte) {
	w.Header().Set(HeaderQuoteReference, uuid.NewString())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write quote response", zap.Error(err))
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("quote request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
