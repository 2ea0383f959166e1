package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbwise/fangmatch/internal/application/matching"
	"github.com/herbwise/fangmatch/internal/domain/herb"
	"github.com/herbwise/fangmatch/pkg/errors"
)

// MatchHandler serves the parse and match endpoints.
type MatchHandler struct {
	service *matching.Service
}

// NewMatchHandler builds the handler over the matching service.
func NewMatchHandler(service *matching.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

// MatchRequest accepts either raw text or pre-parsed herb entries.  When
// both are present the herbs take precedence.
type MatchRequest struct {
	Text  string       `json:"text"`
	Herbs []herb.Entry `json:"herbs"`
}

// Match handles POST /api/v1/match.
func (h *MatchHandler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.Text) > maxInputTextLen {
		respondError(c, errors.New(errors.ErrCodeParseTextTooLong, "input text too long"))
		return
	}

	input := req.Herbs
	if len(input) == 0 {
		if req.Text == "" {
			respondError(c, errors.New(errors.ErrCodeParseEmptyInput, "text or herbs required"))
			return
		}
		input = h.service.ParseText(req.Text).Entries
	} else {
		for i := range input {
			input[i].Name = herb.ResolveHerbAlias(input[i].Name)
		}
	}
	if len(input) == 0 {
		respondError(c, errors.New(errors.ErrCodeParseNoHerbs, "no recognizable herbs in input"))
		return
	}

	out, err := h.service.MatchHerbs(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

// ParseRequest is the body for POST /api/v1/parse.
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// Parse handles POST /api/v1/parse.
func (h *MatchHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.Text) > maxInputTextLen {
		respondError(c, errors.New(errors.ErrCodeParseTextTooLong, "input text too long"))
		return
	}
	respond(c, http.StatusOK, h.service.ParseText(req.Text))
}
