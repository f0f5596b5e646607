package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"Synergy_Link/internal/middleware"
	"Synergy_Link/internal/model"
	"Synergy_Link/internal/service"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

type UserAPI interface {
	Register(ctx context.Context, userID, email string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UploadBusinessCard(ctx context.Context, userID string, img service.Image) (string, error)
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput, img *service.Image) (*model.User, error)
	SetDeviceToken(ctx context.Context, userID, token string) error
	DiscoverUsers(ctx context.Context, userID string, limit int) ([]model.User, error)
}

type UserHandler struct {
	svc UserAPI
}

type RegisterReq struct {
	Email string `json:"email"`
}

// ProfileReq binds from JSON or from a multipart form carrying an "image" file.
type ProfileReq struct {
	FullName    string   `json:"full_name" form:"full_name"`
	CompanyName string   `json:"company_name" form:"company_name"`
	Position    string   `json:"position" form:"position"`
	Bio         string   `json:"bio" form:"bio"`
	Tags        []string `json:"tags" form:"tags"`
	Needs       string   `json:"needs" form:"needs"`
	Seeds       string   `json:"seeds" form:"seeds"`
}

type DeviceTokenReq struct {
	Token string `json:"token" binding:"required"`
}

var errImageTooLarge = errors.New("image too large")

func NewUserHandler(svc UserAPI) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register creates the account for the signed in identity. The email falls
// back to the one in the token.
func (h *UserHandler) Register(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req RegisterReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid params")
			return
		}
	}
	if req.Email == "" {
		req.Email = middleware.CurrentEmail(c)
	}

	u, err := h.svc.Register(c.Request.Context(), userID, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMe(c, u)
}

// Me returns the caller's account and where the client should route next.
func (h *UserHandler) Me(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	u, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMe(c, u)
}

func respondMe(c *gin.Context, u *model.User) {
	next, err := service.NextStep(u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toMeView(u, next)})
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserView(u)})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req ProfileReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	img, err := formImage(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		Position:    req.Position,
		Bio:         req.Bio,
		Tags:        req.Tags,
		Needs:       req.Needs,
		Seeds:       req.Seeds,
	}, img)
	if err != nil {
		writeError(c, err)
		return
	}
	respondMe(c, u)
}

func (h *UserHandler) UploadBusinessCard(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := formImage(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if img == nil {
		badRequest(c, "image file is required")
		return
	}
	url, err := h.svc.UploadBusinessCard(c.Request.Context(), userID, *img)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business_card_image_url": url})
}

func (h *UserHandler) SetDeviceToken(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req DeviceTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	if err := h.svc.SetDeviceToken(c.Request.Context(), userID, req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *UserHandler) Discover(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.svc.DiscoverUsers(c.Request.Context(), userID, queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": toUserViews(list)})
}

// formImage reads the optional "image" part of a multipart request.
func formImage(c *gin.Context) (*service.Image, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size > maxImageBytes {
		return nil, errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errImageTooLarge
	}
	return &service.Image{Data: data, ContentType: fh.Header.Get("Content-Type")}, nil
}
