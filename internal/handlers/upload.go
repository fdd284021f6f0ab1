package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/quota"
	"media-market/internal/upload"
)

type Uploader interface {
	Upload(ctx context.Context, owner *models.User, req upload.Request) (*upload.Result, error)
}

type QuotaChecker interface {
	CanUpload(ctx context.Context, userID uuid.UUID) (quota.Decision, error)
}

type UploadHandler struct {
	flow  Uploader
	quota QuotaChecker
	log   *slog.Logger
}

func NewUploadHandler(flow Uploader, q QuotaChecker, log *slog.Logger) *UploadHandler {
	return &UploadHandler{flow: flow, quota: q, log: log}
}

func (h *UploadHandler) Quota(c *gin.Context) {
	user := currentUser(c)
	d, err := h.quota.CanUpload(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to check quota", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not check upload limits"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// Upload takes a multipart form with kind, title, description, price_cents,
// a media file and an optional cover file.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxRequestSize())

	price, err := strconv.ParseInt(c.DefaultPostForm("price_cents", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price_cents"})
		return
	}
	media, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media file is required"})
		return
	}

	req := upload.Request{
		Kind:        models.ContentKind(c.PostForm("kind")),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		PriceCents:  price,
	}

	mf, err := media.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read media file"})
		return
	}
	defer mf.Close()
	req.Media = upload.File{Name: media.Filename, Size: media.Size, Body: mf}

	if cover, err := c.FormFile("cover"); err == nil {
		cf, err := cover.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read cover file"})
			return
		}
		defer cf.Close()
		req.Cover = &upload.File{Name: cover.Filename, Size: cover.Size, Body: cf}
	}

	user := currentUser(c)
	res, err := h.flow.Upload(c.Request.Context(), user, req)
	var uerr *upload.Error
	switch {
	case errors.Is(err, upload.ErrInvalidRequest), errors.Is(err, upload.ErrInvalidFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, backend.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "Upload limit reached for your plan"})
		return
	case errors.As(err, &uerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed", "step": uerr.Step, "orphaned": uerr.Orphaned})
		return
	case err != nil:
		h.log.Error("failed to upload", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if !res.Allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Upload limit reached for your plan", "quota": res.Decision})
		return
	}
	c.JSON(http.StatusCreated, res)
}
