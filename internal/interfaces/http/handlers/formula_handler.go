package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbwise/fangmatch/internal/application/catalog"
	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
)

// FormulaHandler serves catalog CRUD.
type FormulaHandler struct {
	catalog *catalog.Service
}

// NewFormulaHandler builds the handler over the catalog service.
func NewFormulaHandler(cat *catalog.Service) *FormulaHandler {
	return &FormulaHandler{catalog: cat}
}

// List handles GET /api/v1/formulas.
func (h *FormulaHandler) List(c *gin.Context) {
	respond(c, http.StatusOK, h.catalog.List(c.Request.Context()))
}

// Get handles GET /api/v1/formulas/:id.
func (h *FormulaHandler) Get(c *gin.Context) {
	f, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, f)
}

// FormulaRequest is the create/update body.
type FormulaRequest struct {
	Name           string             `json:"name" binding:"required"`
	Source         string             `json:"source"`
	Composition    []string           `json:"composition" binding:"required"`
	StandardDosage map[string]float64 `json:"standard_dosage"`
	Usage          string             `json:"usage"`
	Effect         string             `json:"effect"`
	Indications    string             `json:"indications"`
	Analysis       string             `json:"analysis"`
}

func (r *FormulaRequest) toFormula(id string) *formula.StandardFormula {
	f := &formula.StandardFormula{
		ID:             id,
		Name:           r.Name,
		Source:         herb.ResolveBookAlias(r.Source),
		Composition:    make([]string, len(r.Composition)),
		StandardDosage: r.StandardDosage,
		Usage:          r.Usage,
		Effect:         r.Effect,
		Indications:    r.Indications,
		Analysis:       r.Analysis,
	}
	for i, name := range r.Composition {
		f.Composition[i] = herb.ResolveHerbAlias(name)
	}
	return f
}

// Create handles POST /api/v1/formulas.
func (h *FormulaHandler) Create(c *gin.Context) {
	var req FormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	created, err := h.catalog.Create(c.Request.Context(), req.toFormula(""))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// Update handles PUT /api/v1/formulas/:id.
func (h *FormulaHandler) Update(c *gin.Context) {
	var req FormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.catalog.Update(c.Request.Context(), req.toFormula(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/formulas/:id.
func (h *FormulaHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reload handles POST /api/v1/formulas/reload.
func (h *FormulaHandler) Reload(c *gin.Context) {
	if err := h.catalog.Reload(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"formulas": len(h.catalog.Snapshot())})
}
