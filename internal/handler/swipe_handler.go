package handler

import (
	"context"
	"net/http"

	"Synergy_Link/internal/middleware"
	"Synergy_Link/internal/service"

	"github.com/gin-gonic/gin"
)

type SwipeAPI interface {
	RecordSwipe(ctx context.Context, swiperID, targetID, action string) (*service.SwipeResult, error)
}

type SwipeHandler struct {
	svc SwipeAPI
}

type SwipeReq struct {
	TargetID string `json:"target_id" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

func NewSwipeHandler(svc SwipeAPI) *SwipeHandler {
	return &SwipeHandler{svc: svc}
}

// Swipe records a like or pass and reports whether it completed a match.
func (h *SwipeHandler) Swipe(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req SwipeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	res, err := h.svc.RecordSwipe(c.Request.Context(), userID, req.TargetID, req.Action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_match": res.IsMatch, "match_id": res.MatchID})
}
