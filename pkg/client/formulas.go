package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FormulasClient manages the formula catalog.
type FormulasClient struct {
	client *Client
}

// FormulaInput is the payload for creating or updating a formula.
type FormulaInput struct {
	Name           string             `json:"name"`
	Source         string             `json:"source,omitempty"`
	Composition    []string           `json:"composition"`
	StandardDosage map[string]float64 `json:"standard_dosage,omitempty"`
	Usage          string             `json:"usage,omitempty"`
	Effect         string             `json:"effect,omitempty"`
	Indications    string             `json:"indications,omitempty"`
	Analysis       string             `json:"analysis,omitempty"`
}

// List returns every formula in the catalog sorted by name.
func (f *FormulasClient) List(ctx context.Context) ([]*Formula, error) {
	var out []*Formula
	if err := f.client.do(ctx, http.MethodGet, "/api/v1/formulas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one formula by ID.
func (f *FormulasClient) Get(ctx context.Context, id string) (*Formula, error) {
	if id == "" {
		return nil, fmt.Errorf("fangmatch: formula id is required")
	}
	var out Formula
	path := "/api/v1/formulas/" + url.PathEscape(id)
	if err := f.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a formula to the catalog.
func (f *FormulasClient) Create(ctx context.Context, input FormulaInput) (*Formula, error) {
	var out Formula
	if err := f.client.do(ctx, http.MethodPost, "/api/v1/formulas", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a formula's fields.
func (f *FormulasClient) Update(ctx context.Context, id string, input FormulaInput) (*Formula, error) {
	if id == "" {
		return nil, fmt.Errorf("fangmatch: formula id is required")
	}
	var out Formula
	path := "/api/v1/formulas/" + url.PathEscape(id)
	if err := f.client.do(ctx, http.MethodPut, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a formula from the catalog.
func (f *FormulasClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("fangmatch: formula id is required")
	}
	path := "/api/v1/formulas/" + url.PathEscape(id)
	return f.client.do(ctx, http.MethodDelete, path, nil, nil)
}

// Reload refreshes the server's in-memory snapshot from its store.
func (f *FormulasClient) Reload(ctx context.Context) error {
	return f.client.do(ctx, http.MethodPost, "/api/v1/formulas/reload", nil, nil)
}
