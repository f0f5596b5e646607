package handler

import (
	"context"
	"net/http"

	"Synergy_Link/internal/middleware"
	"Synergy_Link/internal/model"

	"github.com/gin-gonic/gin"
)

type CommunityAPI interface {
	CreateCommunity(ctx context.Context, userID, name, desc, icon string) (*model.Community, error)
	GetCommunity(ctx context.Context, communityID string) (*model.Community, error)
	ListCommunities(ctx context.Context, status string, page, size int) ([]model.Community, error)
	JoinCommunity(ctx context.Context, userID, communityID string) error
	LeaveCommunity(ctx context.Context, userID, communityID string) error
	SupportCommunity(ctx context.Context, userID, communityID string) (*model.Community, bool, error)
}

type CommunityHandler struct {
	svc CommunityAPI
}

type CommunityCreateReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func NewCommunityHandler(svc CommunityAPI) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), userID, req.Name, req.Description, req.Icon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": toCommunityView(community)})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.GetCommunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": toCommunityView(community)})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	h.membership(c, h.svc.JoinCommunity)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	h.membership(c, h.svc.LeaveCommunity)
}

func (h *CommunityHandler) membership(c *gin.Context, op func(ctx context.Context, userID, communityID string) error) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := op(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Support(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	community, promoted, err := h.svc.SupportCommunity(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": toCommunityView(community), "promoted": promoted})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page := queryInt(c, "page")
	size := queryInt(c, "size")

	list, err := h.svc.ListCommunities(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": toCommunityViews(list)})
}
