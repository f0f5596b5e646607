package handler

import (
	"context"
	"io"
	"net/http"

	"Synergy_Link/internal/middleware"
	"Synergy_Link/internal/model"
	"Synergy_Link/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatAPI interface {
	ListMatches(ctx context.Context, userID string) ([]service.MatchSummary, error)
	GetMatch(ctx context.Context, matchID, userID string) (*model.Match, error)
	SendMessage(ctx context.Context, matchID, senderID, text string) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, matchID, userID string) ([]model.ChatMessage, error)
	SubscribeMessages(ctx context.Context, matchID string, onUpdate func([]model.ChatMessage)) (*service.Subscription, error)
}

type MatchHandler struct {
	svc ChatAPI
}

type SendMessageReq struct {
	Text string `json:"text"`
}

func NewMatchHandler(svc ChatAPI) *MatchHandler {
	return &MatchHandler{svc: svc}
}

func (h *MatchHandler) List(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.svc.ListMatches(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": toMatchSummaryViews(list)})
}

func (h *MatchHandler) Get(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	m, err := h.svc.GetMatch(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": toMatchView(m)})
}

func (h *MatchHandler) Messages(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.svc.ListMessages(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": toMessageViews(list)})
}

func (h *MatchHandler) Send(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	msg, err := h.svc.SendMessage(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": toMessageView(msg)})
}

// Stream pushes the thread as server-sent events: the full list on connect
// and again after every change. Only the newest snapshot is kept for a slow client.
func (h *MatchHandler) Stream(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	matchID := c.Param("id")
	if _, err := h.svc.GetMatch(ctx, matchID, userID); err != nil {
		writeError(c, err)
		return
	}

	updates := make(chan []model.ChatMessage, 1)
	sub, err := h.svc.SubscribeMessages(ctx, matchID, func(list []model.ChatMessage) {
		select {
		case <-updates:
		default:
		}
		updates <- list
	})
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case list := <-updates:
			c.SSEvent("messages", toMessageViews(list))
			return true
		case <-sub.Done():
			return false
		case <-ctx.Done():
			return false
		}
	})
}
