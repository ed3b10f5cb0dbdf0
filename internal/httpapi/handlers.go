// Package httpapi exposes the matching engine over HTTP. Identity comes
// from the gateway-set X-User-ID header; all business rules live in the
// services layer, handlers only translate.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/middleware"
	"github.com/astromatch/astromatch/internal/services"
)

// Handlers bundles the engine services behind the HTTP surface.
type Handlers struct {
	swipes     *services.SwipeService
	candidates *services.CandidateService
	matches    *services.MatchService
	moderation *services.ModerationService
}

func NewHandlers(swipes *services.SwipeService, candidates *services.CandidateService, matches *services.MatchService, moderation *services.ModerationService) *Handlers {
	return &Handlers{
		swipes:     swipes,
		candidates: candidates,
		matches:    matches,
		moderation: moderation,
	}
}

type swipeRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// Swipe handles POST /api/matching/swipe.
func (h *Handlers) Swipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, errors.NewValidationError("body", "target_id and action are required"))
		return
	}

	result, err := h.swipes.RecordSwipe(c.Request.Context(), middleware.UserID(c), req.TargetID, database.SwipeAction(req.Action))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Candidates handles GET /api/matching/candidates.
func (h *Handlers) Candidates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	ranked, err := h.candidates.GetCandidates(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": ranked})
}

// Matches handles GET /api/matching/matches.
func (h *Handlers) Matches(c *gin.Context) {
	profiles, err := h.matches.GetMutualMatches(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": profiles})
}

// LikesReceived handles GET /api/matching/likes-received.
func (h *Handlers) LikesReceived(c *gin.Context) {
	profiles, err := h.matches.GetLikesReceived(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": profiles})
}

// Stats handles GET /api/matching/stats.
func (h *Handlers) Stats(c *gin.Context) {
	stats, err := h.matches.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// MatchState handles GET /api/matching/matches/:userId.
func (h *Handlers) MatchState(c *gin.Context) {
	matched, err := h.matches.AreMatched(c.Request.Context(), middleware.UserID(c), c.Param("userId"))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

// Unmatch handles DELETE /api/matching/matches/:userId.
func (h *Handlers) Unmatch(c *gin.Context) {
	otherID := c.Param("userId")
	if err := h.swipes.Unmatch(c.Request.Context(), middleware.UserID(c), otherID); err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type blockRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Block handles POST /api/moderation/block.
func (h *Handlers) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RenderError(c, errors.NewValidationError("body", "user_id is required"))
		return
	}

	if err := h.moderation.Block(c.Request.Context(), middleware.UserID(c), req.UserID); err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Unblock handles DELETE /api/moderation/block/:userId.
func (h *Handlers) Unblock(c *gin.Context) {
	if err := h.moderation.Unblock(c.Request.Context(), middleware.UserID(c), c.Param("userId")); err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Blocked handles GET /api/moderation/blocked.
func (h *Handlers) Blocked(c *gin.Context) {
	profiles, err := h.moderation.BlockedUsers(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": profiles})
}
