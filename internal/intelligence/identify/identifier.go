// Package identify is the boundary to the external formula-identification
// service.  Given a parsed herb set it returns at most one candidate
// formula, always flagged as AI-generated so the matching engine applies
// its noise-filter exemption.  The engine itself never special-cases this
// path in any other way.
package identify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

// Identifier asks an external service to name the formula a herb set most
// likely represents.  A (nil, nil) return means the service had no answer;
// callers treat errors as soft and proceed without a candidate.
type Identifier interface {
	Identify(ctx context.Context, input []herb.Entry) (*formula.StandardFormula, error)
}

// CacheKey derives a stable cache key from the input's herb names.
func CacheKey(input []herb.Entry) string {
	names := herb.Names(input)
	return "identify:" + strings.Join(names, "|")
}

type herbPayload struct {
	Name   string  `json:"name"`
	Dosage float64 `json:"dosage"`
	Unit   string  `json:"unit"`
}

type identifyRequest struct {
	Herbs []herbPayload `json:"herbs"`
}

type identifyResponse struct {
	Found   bool `json:"found"`
	Formula struct {
		Name           string             `json:"name"`
		Source         string             `json:"source"`
		Composition    []string           `json:"composition"`
		StandardDosage map[string]float64 `json:"standard_dosage"`
		Usage          string             `json:"usage"`
		Effect         string             `json:"effect"`
		Indications    string             `json:"indications"`
		Analysis       string             `json:"analysis"`
	} `json:"formula"`
}

// HTTPIdentifier calls the identification service over JSON/HTTP with
// bounded retries.
type HTTPIdentifier struct {
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	client       *http.Client
	logger       logging.Logger
}

// NewHTTPIdentifier builds an identifier from the intelligence config.
func NewHTTPIdentifier(cfg config.IntelligenceConfig, log logging.Logger) *HTTPIdentifier {
	return &HTTPIdentifier{
		baseURL:      strings.TrimRight(cfg.IdentifyBaseURL, "/"),
		apiKey:       cfg.APIKey,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		client:       &http.Client{Timeout: cfg.Timeout},
		logger:       log,
	}
}

// Identify posts the herb set and decodes at most one candidate.  Retries
// cover transport errors and 5xx responses; 4xx responses fail immediately.
func (h *HTTPIdentifier) Identify(ctx context.Context, input []herb.Entry) (*formula.StandardFormula, error) {
	if len(input) == 0 {
		return nil, nil
	}

	payload := identifyRequest{Herbs: make([]herbPayload, len(input))}
	for i, e := range input {
		payload.Herbs[i] = herbPayload{Name: e.Name, Dosage: e.Dosage, Unit: e.Unit}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal identify request")
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.retryBackoff * time.Duration(attempt)):
			}
		}

		resp, retryable, err := h.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		h.logger.Warn("identify attempt failed",
			logging.Int("attempt", attempt+1), logging.Err(err))
	}
	return nil, lastErr
}

func (h *HTTPIdentifier) post(ctx context.Context, body []byte) (*formula.StandardFormula, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/api/v1/identify", bytes.NewReader(body))
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "failed to build identify request")
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, true, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "identify request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, errors.Newf(errors.ErrCodeIntelUnavailable, "identify service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, errors.Newf(errors.ErrCodeIntelUnavailable, "identify service returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, errors.Wrap(err, errors.ErrCodeIntelUnavailable, "failed to read identify response")
	}

	var decoded identifyResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode identify response")
	}
	if !decoded.Found || decoded.Formula.Name == "" || len(decoded.Formula.Composition) == 0 {
		return nil, false, nil
	}

	f := &formula.StandardFormula{
		ID:             fmt.Sprintf("ai-%s", decoded.Formula.Name),
		Name:           decoded.Formula.Name,
		Source:         herb.ResolveBookAlias(decoded.Formula.Source),
		Composition:    decoded.Formula.Composition,
		StandardDosage: decoded.Formula.StandardDosage,
		Usage:          decoded.Formula.Usage,
		Effect:         decoded.Formula.Effect,
		Indications:    decoded.Formula.Indications,
		Analysis:       decoded.Formula.Analysis,
		IsAIGenerated:  true,
	}
	// Canonicalize composition the same way parsed input is.
	for i, name := range f.Composition {
		f.Composition[i] = herb.ResolveHerbAlias(name)
	}
	return f, false, nil
}
