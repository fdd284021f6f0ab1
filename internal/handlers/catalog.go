package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/realtime"
	"media-market/internal/repository"
	"media-market/internal/upload"
)

type CatalogStore interface {
	ListContent(ctx context.Context, f repository.ContentFilter) ([]models.ContentItem, error)
	GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	LikeCount(ctx context.Context, contentID uuid.UUID) (int64, error)
	ToggleChannelSubscription(ctx context.Context, userID, artistID uuid.UUID) (bool, error)
}

// Social is the RPC half of likes and subscriber counts.
type Social interface {
	ToggleLike(ctx context.Context, userID, contentID uuid.UUID) (bool, error)
	SubscriberCount(ctx context.Context, artistID uuid.UUID) (int64, error)
}

type Streamer interface {
	IsOwned(ctx context.Context, userID, contentID uuid.UUID) bool
	CanStream(ctx context.Context, user *models.User, item *models.ContentItem) bool
}

type CatalogHandler struct {
	store     CatalogStore
	social    Social
	access    Streamer
	storage   backend.ObjectStorage
	publisher realtime.Publisher
	log       *slog.Logger
}

func NewCatalogHandler(store CatalogStore, social Social, access Streamer, storage backend.ObjectStorage, pub realtime.Publisher, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, social: social, access: access, storage: storage, publisher: pub, log: log}
}

// ItemView is a catalog entry as the client sees it. MediaURL is only set
// when the caller may stream the item.
type ItemView struct {
	models.ContentItem
	Owner     string `json:"owner"`
	LikeCount int64  `json:"like_count"`
	Owned     bool   `json:"owned"`
	CoverURL  string `json:"cover_url,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
}

func (h *CatalogHandler) ListVideos(c *gin.Context) { h.list(c, models.KindVideo) }
func (h *CatalogHandler) ListMusic(c *gin.Context)  { h.list(c, models.KindTrack) }
func (h *CatalogHandler) GetVideo(c *gin.Context)   { h.get(c, models.KindVideo) }
func (h *CatalogHandler) GetTrack(c *gin.Context)   { h.get(c, models.KindTrack) }

func (h *CatalogHandler) list(c *gin.Context, kind models.ContentKind) {
	limit, offset := page(c)
	items, err := h.store.ListContent(c.Request.Context(), repository.ContentFilter{
		Kind:   kind,
		Status: models.StatusApproved,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("failed to list content", "kind", kind, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch content"})
		return
	}

	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, ItemView{ContentItem: it, CoverURL: h.coverURL(&it)})
	}
	c.JSON(http.StatusOK, views)
}

func (h *CatalogHandler) get(c *gin.Context, kind models.ContentKind) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)

	item, err := h.store.GetContentItem(ctx, id)
	if errors.Is(err, backend.ErrNotFound) || (err == nil && item.Kind != kind) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}
	if err != nil {
		h.log.Error("failed to get content", "content_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch content"})
		return
	}
	// Unapproved items are only visible to their owner and admins.
	if item.Status != models.StatusApproved && (user == nil || (user.ID != item.OwnerID && !user.IsAdmin())) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	view := ItemView{ContentItem: *item, CoverURL: h.coverURL(item)}
	if owner, err := h.store.GetUser(ctx, item.OwnerID); err == nil {
		view.Owner = owner.DisplayName
	}
	if n, err := h.store.LikeCount(ctx, item.ID); err == nil {
		view.LikeCount = n
	}
	if user != nil {
		view.Owned = user.ID == item.OwnerID || h.access.IsOwned(ctx, user.ID, item.ID)
	}
	if h.access.CanStream(ctx, user, item) {
		view.MediaURL = h.storage.PublicURL(upload.MediaBucket(item.Kind), item.MediaPath)
	}
	c.JSON(http.StatusOK, view)
}

func (h *CatalogHandler) coverURL(item *models.ContentItem) string {
	if item.CoverPath == "" {
		return ""
	}
	return h.storage.PublicURL(upload.CoverBucket(), item.CoverPath)
}

func (h *CatalogHandler) ToggleLike(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user := currentUser(c)

	liked, err := h.social.ToggleLike(c.Request.Context(), user.ID, id)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	case err != nil:
		h.log.Error("failed to toggle like", "content_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update like"})
		return
	}

	typ := realtime.Insert
	if !liked {
		typ = realtime.Delete
	}
	if h.publisher != nil {
		h.publisher.Publish(c.Request.Context(), realtime.Change{
			Table:  "likes",
			Type:   typ,
			Record: gin.H{"content_id": id},
		})
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *CatalogHandler) Subscribers(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	n, err := h.social.SubscriberCount(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to count subscribers", "artist_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch subscribers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"artist_id": id, "subscribers": n})
}

func (h *CatalogHandler) Subscribe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	if user.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot subscribe to yourself"})
		return
	}

	subscribed, err := h.store.ToggleChannelSubscription(c.Request.Context(), user.ID, id)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	case err != nil:
		h.log.Error("failed to toggle subscription", "artist_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": subscribed})
}
