package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-quote/pkg/validation"
)

// RequestError reports a body field that could not be decoded.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Accepted spellings for each body field, canonical name first.
var (
	amountKeys = []string{"loanAmount", "amount"}
	rateKeys   = []string{"interestRate", "rate"}
	termKeys   = []string{"loanTermMonths", "term"}
)

// decodeLoanFields parses a calculator body. Numbers may be JSON numbers or
// numeric strings; missing or empty values stay nil so the validator can
// report them.
func decodeLoanFields(data []byte) (validation.LoanFields, bool, error) {
	var fields validation.LoanFields
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return fields, false, &RequestError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	var err error
	if fields.LoanAmount, err = numberField(body, amountKeys); err != nil {
		return fields, false, err
	}
	if fields.InterestRate, err = numberField(body, rateKeys); err != nil {
		return fields, false, err
	}

	term, err := numberField(body, termKeys)
	if err != nil {
		return fields, false, err
	}
	if term != nil {
		if *term != math.Trunc(*term) || math.Abs(*term) > math.MaxInt32 {
			return fields, false, &RequestError{Field: termKeys[0], Message: "must be a whole number of months"}
		}
		months := int(*term)
		fields.LoanTermMonths = &months
	}

	if fields.LoanPurpose, err = stringField(body, "loanPurpose"); err != nil {
		return fields, false, err
	}
	if fields.SecurityType, err = stringField(body, "securityType"); err != nil {
		return fields, false, err
	}

	return fields, coerceBool(body["schedule"]), nil
}

func numberField(body map[string]interface{}, keys []string) (*float64, error) {
	for _, key := range keys {
		raw, ok := body[key]
		if !ok || raw == nil {
			continue
		}

		var text string
		switch v := raw.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = strings.TrimSpace(v)
			if text == "" {
				continue
			}
		default:
			return nil, &RequestError{Field: key, Message: "must be a number"}
		}

		value, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, &RequestError{Field: key, Message: fmt.Sprintf("%q is not a number", text)}
		}
		return &value, nil
	}
	return nil, nil
}

func stringField(body map[string]interface{}, key string) (string, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &RequestError{Field: key, Message: "must be a string"}
	}
	return strings.TrimSpace(s), nil
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
