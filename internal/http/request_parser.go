package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: trailing data")
	}
	return nil
}

// amountField accepts an amount as a JSON number or string, with either a
// dot or a comma as decimal separator.
type amountField struct {
	raw string
	set bool
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	a.set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &a.raw)
	}
	a.raw = string(b)
	return nil
}

// Positive parses a movement amount.
func (a amountField) Positive() (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return core.ParseAmount(a.raw)
}

// Any parses an amount of any sign, as used for the initial balance.
func (a amountField) Any() (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return core.ParseDecimal(a.raw)
}

// parseTypeParam reads a movement type, defaulting to expense when blank.
func parseTypeParam(v string) (core.MovementType, error) {
	if strings.TrimSpace(v) == "" {
		return core.Expense, nil
	}
	return core.ParseMovementType(v)
}

// parseLimit reads a non-negative integer query parameter; blank means 0.
func parseLimit(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
