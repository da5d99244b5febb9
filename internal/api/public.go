package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"wedding-seating/internal/service"
)

// SubmitRSVP handles POST /api/rsvp
func (h *Handler) SubmitRSVP(c *gin.Context) {
	var req service.RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.svc.SubmitRSVP(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Created {
		Created(c, res)
		return
	}
	Success(c, res)
}

// LookupSeating handles GET /api/seating?email=&name=
func (h *Handler) LookupSeating(c *gin.Context) {
	res, err := h.svc.LookupSeating(c.Request.Context(), c.Query("email"), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, res)
}

// Autocomplete handles GET /api/guests/autocomplete?q=&limit=
func (h *Handler) Autocomplete(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.svc.Autocomplete(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, res)
}
