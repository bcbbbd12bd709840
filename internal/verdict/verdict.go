package verdict

import (
	"encoding/json"
	"strings"
)

// Status is the three-way compliance classification. Session-transient UI
// states (idle, loading) are never represented here.
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusQuestionable Status = "QUESTIONABLE"
	StatusNonCompliant Status = "NON_COMPLIANT"
)

// Valid reports whether s is one of the three closed-enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusCompliant, StatusQuestionable, StatusNonCompliant:
		return true
	}
	return false
}

// Record is the normalized outcome of one analysis, regardless of which
// gateway produced it. A Record is never partially populated: normalization
// always fills every field, substituting safe defaults on failure.
type Record struct {
	ProductName     string   `json:"product_name"`
	Status          Status   `json:"status"`
	ConfidenceScore int      `json:"confidence_score"`
	Reason          string   `json:"reason"`
	ScholarNote     string   `json:"scholar_note"`
	Ingredients     []string `json:"ingredients"`
	Alternatives    []string `json:"alternatives"`
	Origin          string   `json:"origin,omitempty"`
	Certification   string   `json:"certification,omitempty"`
}

const fallbackProductName = "Analysis Failed"

// wirePayload matches the JSON schema the analysis gateways respond with.
// Status arrives in the gateway's own vocabulary and is translated below.
type wirePayload struct {
	ProductName     string   `json:"productName"`
	Status          string   `json:"status"`
	ConfidenceScore int      `json:"confidenceScore"`
	Reason          string   `json:"reason"`
	ScholarNote     string   `json:"scholarNote"`
	Ingredients     []string `json:"ingredients"`
	Alternatives    []string `json:"alternatives"`
	Origin          string   `json:"origin"`
	Certification   string   `json:"certification"`
}

// parseWireStatus translates a gateway status value into the canonical enum.
// Unrecognized values are a schema violation, not something to coerce.
func parseWireStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HALAL":
		return StatusCompliant, true
	case "DOUBTFUL":
		return StatusQuestionable, true
	case "HARAM":
		return StatusNonCompliant, true
	}
	return "", false
}

// Fallback returns the deterministic low-confidence record used when a
// gateway call fails or returns something unusable. The reason explains the
// degradation so the caller can surface it.
func Fallback(reason string) Record {
	if reason == "" {
		reason = "Could not analyze. Please try again with clearer input."
	}
	return Record{
		ProductName:     fallbackProductName,
		Status:          StatusQuestionable,
		ConfidenceScore: 0,
		Reason:          reason,
		ScholarNote:     "Manual verification recommended.",
		Ingredients:     []string{},
		Alternatives:    []string{},
		Origin:          "Unknown",
		Certification:   "None",
	}
}

// Normalize maps a raw gateway response into a Record. It absorbs every
// failure mode — transport error, malformed JSON, out-of-enum status — into
// the fallback record, so callers never observe an error from this layer.
func Normalize(raw json.RawMessage, err error) Record {
	if err != nil {
		return Fallback("Could not reach the analysis service. Please try again.")
	}

	var payload wirePayload
	if jsonErr := json.Unmarshal(raw, &payload); jsonErr != nil {
		return Fallback("The analysis service returned an unreadable response.")
	}

	status, ok := parseWireStatus(payload.Status)
	if !ok {
		return Fallback("The analysis service returned an unrecognized verdict.")
	}

	rec := Record{
		ProductName:     strings.TrimSpace(payload.ProductName),
		Status:          status,
		ConfidenceScore: clampConfidence(payload.ConfidenceScore),
		Reason:          payload.Reason,
		ScholarNote:     payload.ScholarNote,
		Ingredients:     payload.Ingredients,
		Alternatives:    payload.Alternatives,
		Origin:          payload.Origin,
		Certification:   payload.Certification,
	}
	if rec.ProductName == "" {
		rec.ProductName = "Unknown Product"
	}
	if rec.Ingredients == nil {
		rec.Ingredients = []string{}
	}
	if rec.Alternatives == nil {
		rec.Alternatives = []string{}
	}
	return rec
}

func clampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
