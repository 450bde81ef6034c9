package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/linkbio/internal/application"
	"github.com/oksasatya/linkbio/internal/interface/middleware"
	"github.com/oksasatya/linkbio/pkg/response"
	"github.com/oksasatya/linkbio/pkg/validation"
)

// MaxAvatarBytes caps the size of an uploaded avatar image.
const MaxAvatarBytes = 5 << 20

type ProfileHandler struct {
	Svc    *app.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *app.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type createProfileRequest struct {
	Name    string        `json:"name" binding:"required,profilename"`
	PhoneNo string        `json:"phoneNo" binding:"phone"`
	About   string        `json:"about" binding:"profileabout"`
	Links   []linkRequest `json:"links" binding:"omitempty,max=50,dive"`
}

type updateProfileRequest struct {
	Name    string        `json:"name" binding:"profilename"`
	PhoneNo string        `json:"phoneNo" binding:"phone"`
	About   string        `json:"about" binding:"profileabout"`
	Links   []linkRequest `json:"links" binding:"omitempty,max=50,dive"`
}

type switchProfileRequest struct {
	ProfileIndex *int `json:"profileIndex" binding:"required"`
}

type profileURLResponse struct {
	Message    string `json:"message"`
	ProfileURL string `json:"profileUrl"`
}

type switchResponse struct {
	Message       string `json:"message"`
	ActiveProfile int    `json:"activeProfile"`
	ProfileURL    string `json:"profileUrl"`
}

type avatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatarUrl"`
}

type searchResponse struct {
	Profiles []app.DirectoryEntry `json:"profiles"`
}

// Create POST /api/profile/create
func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.CreateProfile(c.Request.Context(), uid, app.ProfileFields{
		Name:    req.Name,
		PhoneNo: req.PhoneNo,
		About:   req.About,
		Links:   toLinks(req.Links),
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, profileURLResponse{Message: "Profile created successfully", ProfileURL: url})
}

// Update PUT /api/profile/update and /api/profile/update/:profileId
// Without a profileId the active profile is updated.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UpdateProfile(c.Request.Context(), uid, c.Param("profileId"), app.ProfileUpdate{
		Name:    req.Name,
		PhoneNo: req.PhoneNo,
		About:   req.About,
		Links:   toLinks(req.Links),
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, profileURLResponse{Message: "Profile updated successfully", ProfileURL: url})
}

// Switch POST /api/profile/switch
func (h *ProfileHandler) Switch(c *gin.Context) {
	var req switchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	res, err := h.Svc.SwitchProfile(c.Request.Context(), uid, *req.ProfileIndex)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, switchResponse{
		Message:       "Switched active profile",
		ActiveProfile: res.ActiveProfile,
		ProfileURL:    res.ProfileURL,
	})
}

// All GET /api/profile/all
func (h *ProfileHandler) All(c *gin.Context) {
	res, err := h.Svc.GetAllProfiles(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Active GET /api/profile/active
func (h *ProfileHandler) Active(c *gin.Context) {
	res, err := h.Svc.GetActiveProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ByID GET /api/profile/profile/:profileId
func (h *ProfileHandler) ByID(c *gin.Context) {
	res, err := h.Svc.GetProfileByID(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("profileId"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// BySlug GET /api/profile/:urlSlug and /api/profile/public/:urlSlug
func (h *ProfileHandler) BySlug(c *gin.Context) {
	res, err := h.Svc.GetProfile(c.Request.Context(), c.Param("urlSlug"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Public GET /api/profile/public?page=&limit=&search=
func (h *ProfileHandler) Public(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	res, err := h.Svc.GetPublicProfiles(c.Request.Context(), app.PublicQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Search GET /api/profile/search?q=&size=
func (h *ProfileHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := h.Svc.SearchProfiles(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, searchResponse{Profiles: res})
}

// Avatar POST /api/profile/avatar/:profileId (multipart field "avatar")
func (h *ProfileHandler) Avatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	if fh.Size > MaxAvatarBytes {
		response.Error(c, http.StatusBadRequest, "avatar too large", gin.H{"max_bytes": MaxAvatarBytes})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusBadRequest, "avatar must be an image", gin.H{"content_type": contentType})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "cannot read avatar", err)
		return
	}
	defer func() { _ = f.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, c.Param("profileId"), f, fh.Filename, contentType)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, avatarResponse{Message: "Avatar uploaded successfully", AvatarURL: url})
}
