package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/internal/domain/entity"
	"github.com/oksasatya/linkbio/internal/interface/middleware"
	"github.com/oksasatya/linkbio/pkg/response"
	"github.com/oksasatya/linkbio/pkg/validation"
)

type AuthHandler struct {
	Svc    *app.AccountService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *app.AccountService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type linkRequest struct {
	Platform    string `json:"platform" binding:"max=50"`
	URL         string `json:"url" binding:"linkurl"`
	IsCustom    bool   `json:"isCustom"`
	CustomTitle string `json:"customTitle" binding:"max=100"`
	IsPrivate   bool   `json:"isPrivate"`
}

func toLinks(in []linkRequest) []entity.Link {
	if in == nil {
		return nil
	}
	out := make([]entity.Link, 0, len(in))
	for _, l := range in {
		out = append(out, entity.Link{
			Platform:    l.Platform,
			URL:         l.URL,
			IsCustom:    l.IsCustom,
			CustomTitle: l.CustomTitle,
			IsPrivate:   l.IsPrivate,
		})
	}
	return out
}

type registerRequest struct {
	Email    string        `json:"email" binding:"required,email"`
	Password string        `json:"password" binding:"required,pwd"`
	Name     string        `json:"name" binding:"required,profilename"`
	PhoneNo  string        `json:"phoneNo" binding:"phone"`
	About    string        `json:"about" binding:"profileabout"`
	Links    []linkRequest `json:"links" binding:"omitempty,max=50,dive"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type deleteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type deleteWithPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	ProfileURL string `json:"profileUrl"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type deleteResponse struct {
	Message      string `json:"message"`
	DeletedEmail string `json:"deletedEmail"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile: app.ProfileFields{
			Name:    req.Name,
			PhoneNo: req.PhoneNo,
			About:   req.About,
			Links:   toLinks(req.Links),
		},
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, registerResponse{
		Message:    "User registered successfully",
		Token:      res.Token,
		ProfileURL: res.ProfileURL,
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, loginResponse{Token: res.Token})
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, response.Message{Message: "Logged out successfully"})
}

// Delete DELETE /api/auth/delete (auth required, caller must own the email)
func (h *AuthHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	email, err := h.Svc.DeleteAccount(c.Request.Context(), uid, req.Email)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, deleteResponse{Message: "Account deleted successfully", DeletedEmail: email})
}

// DeleteWithPassword DELETE /api/auth/delete-with-password (auth required)
func (h *AuthHandler) DeleteWithPassword(c *gin.Context) {
	var req deleteWithPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	email, err := h.Svc.DeleteAccountWithPassword(c.Request.Context(), uid, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, deleteResponse{Message: "Account deleted successfully", DeletedEmail: email})
}
