package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-quote/internal/cache"
	"github.com/iwvelando/loan-quote/internal/output"
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/validation"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const validBody = `{"loanAmount":500000,"interestRate":8.95,"loanTermMonths":240,"loanPurpose":"business","securityType":"property"}`

func newTestHandler(policy validation.BoundsPolicy, store cache.Cache) http.Handler {
	return NewHandler(Options{
		Logger:  zap.NewNop(),
		Engine:  quote.NewEngine(zap.NewNop(), policy, quote.DefaultRateTables()),
		Cache:   store,
		Version: "test",
	})
}

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) quote.Result {
	t.Helper()
	var result quote.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

func TestHandleCalculateSuccess(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	rr := post(t, handler, "/api/calculate-loan", validBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if _, err := uuid.Parse(rr.Header().Get(HeaderQuoteReference)); err != nil {
		t.Fatalf("expected a UUID quote reference, got %q", rr.Header().Get(HeaderQuoteReference))
	}

	result := decodeResult(t, rr)
	if math.Abs(result.MonthlyPayment-4482.56) > 0.01 {
		t.Errorf("expected monthly payment 4482.56, got %v", result.MonthlyPayment)
	}
	if math.Abs(result.TotalInterest-(result.MonthlyPayment*240-500000)) > 0.01 {
		t.Errorf("total interest %v inconsistent with payment %v", result.TotalInterest, result.MonthlyPayment)
	}
	if result.EffectiveRate <= 8.95 {
		t.Errorf("expected effective rate above nominal, got %v", result.EffectiveRate)
	}
	if result.AmortizationSchedule != nil {
		t.Errorf("schedule should be omitted unless requested")
	}
}

func TestHandleCalculateWithSchedule(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"Query flag", "/api/calculate-loan?schedule=true", validBody},
		{"Body flag", "/api/calculate-loan", strings.Replace(validBody, "{", `{"schedule":true,`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, handler, tt.path, tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			result := decodeResult(t, rr)
			if len(result.AmortizationSchedule) != 240 {
				t.Fatalf("expected 240 schedule entries, got %d", len(result.AmortizationSchedule))
			}
			if last := result.AmortizationSchedule[239]; last.Balance > 0.01 {
				t.Errorf("expected final balance near zero, got %v", last.Balance)
			}
		})
	}
}

func TestHandleCalculateAliasesAndStrings(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	body := `{"amount":"500000","rate":"8.95","term":"240","loanPurpose":"business","securityType":"property"}`
	rr := post(t, handler, "/api/calculate-loan", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if result := decodeResult(t, rr); math.Abs(result.MonthlyPayment-4482.56) > 0.01 {
		t.Errorf("expected monthly payment 4482.56, got %v", result.MonthlyPayment)
	}
}

func TestHandleCalculateValidationErrors(t *testing.T) {
	strict := validation.StrictPolicy()

	tests := []struct {
		name     string
		policy   validation.BoundsPolicy
		body     string
		expected []string
	}{
		{
			name:   "Empty body",
			policy: strict,
			body:   "",
			expected: []string{
				strict.MinAmountMessage(),
				strict.RateMessage(),
				strict.TermMessage(),
				validation.PurposeRequiredMessage,
				validation.SecurityRequiredMessage,
			},
		},
		{
			name:     "Strict requires purpose and security",
			policy:   strict,
			body:     `{"amount":500000,"rate":8.95,"term":240}`,
			expected: []string{validation.PurposeRequiredMessage, validation.SecurityRequiredMessage},
		},
		{
			name:     "Strict rejects low rate",
			policy:   strict,
			body:     strings.Replace(validBody, "8.95", "3.5", 1),
			expected: []string{strict.RateMessage()},
		},
		{
			name:     "Amount above maximum",
			policy:   validation.PermissivePolicy(),
			body:     `{"amount":6000000,"rate":8.95,"term":240}`,
			expected: []string{validation.PermissivePolicy().MaxAmountMessage()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, newTestHandler(tt.policy, nil), "/api/calculate-loan", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp validationErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Errors) != len(tt.expected) {
				t.Fatalf("expected errors %v, got %v", tt.expected, resp.Errors)
			}
			for i := range tt.expected {
				if resp.Errors[i] != tt.expected[i] {
					t.Errorf("error %d = %q, expected %q", i, resp.Errors[i], tt.expected[i])
				}
			}
			if resp.Error != tt.expected[0] {
				t.Errorf("expected first error %q, got %q", tt.expected[0], resp.Error)
			}
		})
	}
}

func TestHandleCalculatePermissiveDefaults(t *testing.T) {
	handler := newTestHandler(validation.PermissivePolicy(), nil)

	rr := post(t, handler, "/api/calculate-loan", `{"amount":500000,"rate":3.5,"term":240}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	expected := quote.CalculateLoan(quote.Input{
		LoanAmount: 500000, InterestRate: 3.5, LoanTermMonths: 240,
		LoanPurpose: quote.PurposeBusiness, SecurityType: quote.SecurityProperty,
	})
	if result := decodeResult(t, rr); result.EffectiveRate != expected.EffectiveRate {
		t.Errorf("expected property valuation fee to apply, got effective rate %v want %v", result.EffectiveRate, expected.EffectiveRate)
	}
}

func TestHandleCalculateBadRequests(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"Invalid JSON", `{"amount":`, "invalid JSON"},
		{"Non-object body", `[1,2,3]`, "invalid JSON"},
		{"Non-numeric string", `{"amount":"lots"}`, "amount"},
		{"Boolean amount", `{"loanAmount":true}`, "loanAmount: must be a number"},
		{"Fractional term", `{"term":12.5}`, "whole number of months"},
		{"Numeric purpose", `{"loanPurpose":7}`, "loanPurpose: must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, handler, "/api/calculate-loan", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("expected %q in %s", tt.contains, rr.Body.String())
			}
		})
	}
}

func TestHandleCalculateBodyTooLarge(t *testing.T) {
	handler := NewHandler(Options{MaxBodySize: 32})

	rr := post(t, handler, "/api/calculate-loan", validBody)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleCalculateMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calculate-loan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleCalculateCache(t *testing.T) {
	store := cache.NewMemoryCache()
	handler := newTestHandler(validation.StrictPolicy(), store)

	first := post(t, handler, "/api/calculate-loan", validBody)
	second := post(t, handler, "/api/calculate-loan", validBody)
	withSchedule := post(t, handler, "/api/calculate-loan?schedule=1", validBody)

	if first.Header().Get(HeaderCache) != "MISS" || second.Header().Get(HeaderCache) != "HIT" {
		t.Fatalf("expected MISS then HIT, got %q then %q", first.Header().Get(HeaderCache), second.Header().Get(HeaderCache))
	}
	if withSchedule.Header().Get(HeaderCache) != "MISS" {
		t.Errorf("schedule requests must not share a cache entry with compact ones")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Errorf("cached body differs from computed body")
	}
	if first.Header().Get(HeaderQuoteReference) == second.Header().Get(HeaderQuoteReference) {
		t.Errorf("each response should carry its own reference")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 cache entries, got %d", store.Len())
	}
}

func TestHandleSavings(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	rr := post(t, handler, "/api/calculate-loan/savings", validBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp savingsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if math.Abs(resp.Savings.MonthlySavings-405.66) > 0.01 {
		t.Errorf("expected monthly savings 405.66, got %v", resp.Savings.MonthlySavings)
	}
	if resp.Savings.TimeToApprovalDays != 1 || resp.Savings.SettlementDays != 4 {
		t.Errorf("unexpected timing constants %+v", resp.Savings)
	}
	if resp.Result.AmortizationSchedule != nil {
		t.Errorf("schedule should be omitted unless requested")
	}
}

func TestHandleScheduleXLSX(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	rr := post(t, handler, "/api/calculate-loan/schedule.xlsx?start=2025-01", validBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != output.XLSXContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("expected attachment filename, got %q", rr.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(rr.Body)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(output.ScheduleSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 241 {
		t.Fatalf("expected header plus 240 rows, got %d", len(rows))
	}
	if rows[240][1] != "2044-12" {
		t.Errorf("expected last row labelled 2044-12, got %v", rows[240])
	}
}

func TestHandleScheduleXLSXInvalidStart(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	rr := post(t, handler, "/api/calculate-loan/schedule.xlsx?start=January", validBody)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleRates(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rates", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var rates map[string]float64
	if err := json.Unmarshal(rr.Body.Bytes(), &rates); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rates["working-capital"] != 9.45 || len(rates) != 4 {
		t.Errorf("unexpected rates %v", rates)
	}
}

func TestHandleComparisonRates(t *testing.T) {
	handler := newTestHandler(validation.StrictPolicy(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/comparison-rates", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var lenders []quote.ComparisonRate
	if err := json.Unmarshal(rr.Body.Bytes(), &lenders); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(lenders) != 5 || !lenders[0].IsAAGT {
		t.Errorf("unexpected lenders %+v", lenders)
	}
}

func TestHandleVersionAndHealth(t *testing.T) {
	handler := newTestHandler(validation.PermissivePolicy(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["version"] != "test" || payload["policy"] != "permissive" {
		t.Errorf("unexpected version payload %v", payload)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}
}

func TestDecodeLoanFields(t *testing.T) {
	fields, schedule, err := decodeLoanFields([]byte(`{"loanAmount":"  250000 ","rate":7,"loanTermMonths":60.0,"loanPurpose":" property ","schedule":"yes"}`))
	if err != nil {
		t.Fatalf("decodeLoanFields() error = %v", err)
	}
	if fields.LoanAmount == nil || *fields.LoanAmount != 250000 {
		t.Errorf("unexpected amount %v", fields.LoanAmount)
	}
	if fields.InterestRate == nil || *fields.InterestRate != 7 {
		t.Errorf("unexpected rate %v", fields.InterestRate)
	}
	if fields.LoanTermMonths == nil || *fields.LoanTermMonths != 60 {
		t.Errorf("unexpected term %v", fields.LoanTermMonths)
	}
	if fields.LoanPurpose != "property" || fields.SecurityType != "" {
		t.Errorf("unexpected enumerations %+v", fields)
	}
	if schedule {
		t.Errorf("unparseable schedule flag should be false")
	}

	fields, _, err = decodeLoanFields([]byte(`{"amount":"","term":null}`))
	if err != nil {
		t.Fatalf("decodeLoanFields() error = %v", err)
	}
	if fields.LoanAmount != nil || fields.LoanTermMonths != nil {
		t.Errorf("empty and null values should be treated as missing, got %+v", fields)
	}
}

func TestRequestError(t *testing.T) {
	_, _, err := decodeLoanFields([]byte(`{"rate":{}}`))
	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if reqErr.Field != "rate" {
		t.Errorf("expected field rate, got %s", reqErr.Field)
	}
}
