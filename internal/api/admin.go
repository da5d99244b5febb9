package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wedding-seating/internal/auth"
	"wedding-seating/internal/export"
	"wedding-seating/internal/service"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid JSON body")
		return
	}

	ok, err := h.passwords.Check(req.Password)
	if err != nil {
		InternalError(c, fmt.Errorf("failed to check admin password: %w", err))
		return
	}
	if !ok {
		Unauthorized(c, "Invalid password")
		return
	}

	token, err := h.tokens.Sign()
	if err != nil {
		InternalError(c, err)
		return
	}
	h.setTokenCookie(c, token, int(h.tokens.TTL()/time.Second))
	h.log.Info().Str("ip", c.ClientIP()).Msg("Admin logged in")
	Success(c, gin.H{"expires_in": int(h.tokens.TTL() / time.Second)})
}

// Logout handles POST /api/admin/logout
func (h *Handler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	Success(c, nil)
}

func (h *Handler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", h.cookieSecure, true)
}

// Me handles GET /api/admin/me
func (h *Handler) Me(c *gin.Context) {
	claims, _ := c.MustGet(claimsKey).(*auth.Claims)
	data := gin.H{"role": claims.Role, "subject": claims.Subject}
	if claims.ExpiresAt != nil {
		data["expires_at"] = claims.ExpiresAt.Time
	}
	Success(c, data)
}

// Guests handles GET /api/admin/guests
func (h *Handler) Guests(c *gin.Context) {
	listing, err := h.svc.Guests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, listing)
}

// RSVPs handles GET /api/admin/rsvps
func (h *Handler) RSVPs(c *gin.Context) {
	rsvps, err := h.svc.RSVPs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rsvps)
}

// RSVPStats handles GET /api/admin/rsvp-stats
func (h *Handler) RSVPStats(c *gin.Context) {
	stats, err := h.svc.RSVPStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, stats)
}

// CreateInvitedGuest handles POST /api/admin/invited-guests
func (h *Handler) CreateInvitedGuest(c *gin.Context) {
	var req service.NewGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	g, err := h.svc.CreateInvitedGuest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, g)
}

// UpdateGuestIdentity handles PUT /api/admin/invited-guests/:id/identity
func (h *Handler) UpdateGuestIdentity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.IdentityUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	res, err := h.svc.UpdateGuestIdentity(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, res)
}

// UpdateGuestCount handles PUT /api/admin/guest-count
func (h *Handler) UpdateGuestCount(c *gin.Context) {
	var req service.GuestCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	res, err := h.svc.UpdateGuestCount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, res)
}

// Seating handles GET /api/admin/seating
func (h *Handler) Seating(c *gin.Context) {
	rows, err := h.svc.Seating(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, rows)
}

// UpdateSeating handles PUT /api/admin/seating/:id
func (h *Handler) UpdateSeating(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.SeatingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	row, err := h.svc.UpdateSeating(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, row)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportSeating handles GET /api/admin/seating/export
func (h *Handler) ExportSeating(c *gin.Context) {
	listing, err := h.svc.Guests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := export.SeatingWorkbook(listing.Guests, h.layout)
	if err != nil {
		InternalError(c, err)
		return
	}
	filename := fmt.Sprintf("seating-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// AutoAssign handles POST /api/admin/auto-assign-seats?dry_run=true
func (h *Handler) AutoAssign(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		BadRequest(c, "dry_run must be true or false")
		return
	}
	h.runAllocator(c, dryRun)
}

// CronAutoAssign handles GET /api/cron/auto-assign-seats
func (h *Handler) CronAutoAssign(c *gin.Context) {
	h.runAllocator(c, false)
}

func (h *Handler) runAllocator(c *gin.Context, dryRun bool) {
	if h.allocator == nil {
		InternalError(c, errors.New("allocator is not configured"))
		return
	}
	res, err := h.allocator.Run(c.Request.Context(), dryRun)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, res)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}
