package client

import (
	"context"
	"net/http"
)

// MatchClient exposes the parse and match operations.
type MatchClient struct {
	client *Client
}

// HerbEntry is one herb with its parsed dosage.
type HerbEntry struct {
	Name         string  `json:"name"`
	Dosage       float64 `json:"dosage"`
	Unit         string  `json:"unit"`
	OriginalText string  `json:"original_text"`
}

// Formula is a standard formula record.
type Formula struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Source         string             `json:"source"`
	Composition    []string           `json:"composition"`
	StandardDosage map[string]float64 `json:"standard_dosage,omitempty"`
	Usage          string             `json:"usage,omitempty"`
	Effect         string             `json:"effect,omitempty"`
	Indications    string             `json:"indications,omitempty"`
	Analysis       string             `json:"analysis,omitempty"`
	IsAIGenerated  bool               `json:"is_ai_generated,omitempty"`
}

// DosageAnalysis compares input dosage ratios against a formula's
// standard proportions.
type DosageAnalysis struct {
	Similarity float64 `json:"similarity"`
	Details    string  `json:"details"`
}

// MatchResult is one ranked formula match.
type MatchResult struct {
	Formula         *Formula        `json:"formula"`
	Score           float64         `json:"score"`
	MatchType       string          `json:"match_type"`
	MissingHerbs    []string        `json:"missing_herbs"`
	AdditionalHerbs []HerbEntry     `json:"additional_herbs"`
	InputHerbs      []HerbEntry     `json:"input_herbs"`
	DosageAnalysis  *DosageAnalysis `json:"dosage_analysis,omitempty"`
	IsCombined      bool            `json:"is_combined,omitempty"`
	CombinedWith    string          `json:"combined_with,omitempty"`
}

// MatchRequest carries either free text or pre-parsed herbs.  When both
// are set the server uses the herbs.
type MatchRequest struct {
	Text  string      `json:"text,omitempty"`
	Herbs []HerbEntry `json:"herbs,omitempty"`
}

// MatchResponse is the full match outcome.
type MatchResponse struct {
	Input        []HerbEntry    `json:"input"`
	Results      []*MatchResult `json:"results"`
	FromIdentify bool           `json:"from_identify,omitempty"`
	Analysis     string         `json:"analysis,omitempty"`
}

// ParseResponse is the outcome of parsing free text.
type ParseResponse struct {
	Entries []HerbEntry `json:"entries"`
	Total   int         `json:"total_tokens"`
	Dropped int         `json:"dropped_tokens"`
}

// Match ranks the catalog against the given input.
func (m *MatchClient) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	var out MatchResponse
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/match", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Parse extracts herb entries from free text without matching.
func (m *MatchClient) Parse(ctx context.Context, text string) (*ParseResponse, error) {
	var out ParseResponse
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/parse", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
