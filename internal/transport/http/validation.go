package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
)

const maxBodyBytes = 1 << 20

// decimalString accepts a JSON string or number and keeps its literal text,
// so "12.5" and 12.5 both reach the domain parser unrounded.
type decimalString string

func (d *decimalString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = decimalString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a decimal number: %w", err)
	}
	*d = decimalString(n)
	return nil
}

// optionalDate tells an absent field apart from an explicit null.
type optionalDate struct {
	Set   bool
	Value *civil.Date
}

func (o *optionalDate) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		o.Value = nil
		return nil
	}
	var d civil.Date
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	o.Value = &d
	return nil
}

type createRequestBody struct {
	ProductID          string        `json:"product_id"`
	PatientID          *string       `json:"patient_id"`
	IsGlobal           bool          `json:"is_global"`
	DiscountPercentage decimalString `json:"discount_percentage"`
	Reason             string        `json:"reason"`
	ExpiryDate         *civil.Date   `json:"expiry_date"`
}

type updateRequestBody struct {
	ProductID          *string        `json:"product_id"`
	PatientID          *string        `json:"patient_id"`
	IsGlobal           *bool          `json:"is_global"`
	DiscountPercentage *decimalString `json:"discount_percentage"`
	Reason             *string        `json:"reason"`
	ExpiryDate         optionalDate   `json:"expiry_date"`
}

type decisionBody struct {
	ApprovalNotes string `json:"approval_notes"`
}

// decodeJSON decodes a single JSON object. An empty body is allowed when
// allowEmpty is set, leaving dest untouched.
func decodeJSON(r *http.Request, dest interface{}, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return badRequest("invalid request body: " + err.Error())
	}
	if decoder.More() {
		return badRequest("invalid request body: unexpected trailing data")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}
