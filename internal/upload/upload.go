// Package upload runs the content upload sequence: quota check, media blob,
// optional cover blob, then the pending content row.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/metrics"
	"media-market/internal/models"
	"media-market/internal/quota"
	"media-market/internal/realtime"
	"media-market/internal/session"
)

var ErrInvalidRequest = errors.New("invalid upload request")

// File is one uploaded part.
type File struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

type Request struct {
	Kind        models.ContentKind
	Title       string
	Description string
	PriceCents  int64
	Media       File
	Cover       *File
}

// Blob names a stored object.
type Blob struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

// Error reports the step that failed and the blobs already written, which
// are left in storage.
type Error struct {
	Step     string
	Err      error
	Orphaned []Blob
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Result struct {
	Allowed  bool                `json:"allowed"`
	Decision quota.Decision      `json:"quota"`
	Item     *models.ContentItem `json:"item,omitempty"`
}

type Quota interface {
	CanUpload(ctx context.Context, userID uuid.UUID) (quota.Decision, error)
}

type Content interface {
	InsertContentItem(ctx context.Context, item *models.ContentItem, limit int) error
}

type Orchestrator struct {
	quota     Quota
	storage   backend.ObjectStorage
	content   Content
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func NewOrchestrator(q Quota, storage backend.ObjectStorage, content Content, pub realtime.Publisher, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{quota: q, storage: storage, content: content, publisher: pub, metrics: m, log: log}
}

// Upload runs the sequence for owner. A quota denial is a result with
// Allowed false, and nothing is stored. Failures after the first blob come
// back as *Error.
func (o *Orchestrator) Upload(ctx context.Context, owner *models.User, req Request) (*Result, error) {
	if owner == nil {
		return nil, session.ErrLoginRequired
	}

	mediaRule, ok := ruleFor(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if req.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	mediaExt, mediaType, err := mediaRule.check(&req.Media)
	if err != nil {
		return nil, err
	}
	var coverExt, coverType string
	if req.Cover != nil {
		if coverExt, coverType, err = coverRule.check(req.Cover); err != nil {
			return nil, err
		}
	}

	decision, err := o.quota.CanUpload(ctx, owner.ID)
	if err != nil {
		o.metrics.Upload("error")
		return nil, err
	}
	res := &Result{Allowed: decision.Allowed, Decision: decision}
	if !decision.Allowed {
		o.metrics.Upload("quota_denied")
		return res, nil
	}

	var stored []Blob
	fail := func(step string, err error) (*Result, error) {
		o.metrics.Upload("failed")
		if len(stored) > 0 {
			o.log.Warn("upload aborted, blobs left in storage",
				"step", step, "owner_id", owner.ID, "orphaned", stored, logging.Err(err))
		}
		return nil, &Error{Step: step, Err: err, Orphaned: stored}
	}

	media := Blob{Bucket: mediaRule.bucket, Path: objectPath(owner.ID, mediaExt)}
	if err := o.storage.Upload(ctx, media.Bucket, media.Path, req.Media.Body, mediaType); err != nil {
		return fail("media", err)
	}
	stored = append(stored, media)

	var cover Blob
	if req.Cover != nil {
		cover = Blob{Bucket: coverRule.bucket, Path: objectPath(owner.ID, coverExt)}
		if err := o.storage.Upload(ctx, cover.Bucket, cover.Path, req.Cover.Body, coverType); err != nil {
			return fail("cover", err)
		}
		stored = append(stored, cover)
	}

	item := &models.ContentItem{
		ID:          uuid.New(),
		Kind:        req.Kind,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		OwnerID:     owner.ID,
		MediaPath:   media.Path,
		CoverPath:   cover.Path,
		Status:      models.StatusPending,
	}
	if err := o.content.InsertContentItem(ctx, item, decision.Limit); err != nil {
		return fail("insert", err)
	}

	o.metrics.Upload("ok")
	if o.publisher != nil {
		// Pending items are for moderators only until approved.
		o.publisher.Publish(ctx, realtime.Change{Table: "moderation_queue", Type: realtime.Insert, Record: item})
	}
	res.Item = item
	return res, nil
}

func objectPath(owner uuid.UUID, ext string) string {
	return owner.String() + "/" + uuid.NewString() + ext
}
