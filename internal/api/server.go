// Package api serves the guest-facing and admin HTTP endpoints.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-seating/internal/auth"
	"wedding-seating/internal/export"
	"wedding-seating/internal/seating"
	"wedding-seating/internal/service"
)

// Allocator runs one seat assignment pass.
type Allocator interface {
	Run(ctx context.Context, dryRun bool) (*seating.Result, error)
}

// Deps is everything the router needs.
type Deps struct {
	Service      *service.Service
	Allocator    Allocator
	Tokens       *auth.Tokens
	Passwords    auth.PasswordChecker
	CronSecret   string
	CookieSecure bool
	Layout       export.Layout
	Log          zerolog.Logger
}

// Handler holds the endpoint implementations.
type Handler struct {
	svc          *service.Service
	allocator    Allocator
	tokens       *auth.Tokens
	passwords    auth.PasswordChecker
	cookieSecure bool
	layout       export.Layout
	log          zerolog.Logger
}

// NewRouter wires every route onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log.With().Str("component", "http").Logger()
	h := &Handler{
		svc:          d.Service,
		allocator:    d.Allocator,
		tokens:       d.Tokens,
		passwords:    d.Passwords,
		cookieSecure: d.CookieSecure,
		layout:       d.Layout,
		log:          log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pub := r.Group("/api")
	pub.POST("/rsvp", h.SubmitRSVP)
	pub.GET("/seating", h.LookupSeating)
	pub.GET("/guests/autocomplete", h.Autocomplete)

	pub.POST("/admin/login", h.Login)

	admin := r.Group("/api/admin", AdminAuth(d.Tokens))
	admin.POST("/logout", h.Logout)
	admin.GET("/me", h.Me)
	admin.GET("/guests", h.Guests)
	admin.GET("/rsvps", h.RSVPs)
	admin.GET("/rsvp-stats", h.RSVPStats)
	admin.POST("/invited-guests", h.CreateInvitedGuest)
	admin.PUT("/invited-guests/:id/identity", h.UpdateGuestIdentity)
	admin.PUT("/guest-count", h.UpdateGuestCount)
	admin.GET("/seating", h.Seating)
	admin.GET("/seating/export", h.ExportSeating)
	admin.PUT("/seating/:id", h.UpdateSeating)
	admin.POST("/auto-assign-seats", h.AutoAssign)

	cron := r.Group("/api/cron", CronAuth(d.CronSecret))
	cron.GET("/auto-assign-seats", h.CronAutoAssign)

	return r
}
