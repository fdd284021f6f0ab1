package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/purchase"
	"media-market/internal/quota"
	"media-market/internal/realtime"
	"media-market/internal/repository"
	"media-market/internal/session"
	"media-market/internal/subscription"
	"media-market/internal/ticketing"
	"media-market/internal/upload"
)

func init() { gin.SetMode(gin.TestMode) }

// as injects user into every request, standing in for the session middleware.
func as(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func send(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubPurchaser struct {
	begin    *purchase.Result
	complete *purchase.Result
	err      error
	calls    []string
}

func (s *stubPurchaser) Begin(_ context.Context, buyer *models.User, id uuid.UUID) (*purchase.Result, error) {
	s.calls = append(s.calls, "begin")
	if buyer == nil {
		return &purchase.Result{State: purchase.LoginRequired, ContentID: id}, nil
	}
	return s.begin, s.err
}

func (s *stubPurchaser) Complete(_ context.Context, orderID string) (*purchase.Result, error) {
	s.calls = append(s.calls, "complete:"+orderID)
	return s.complete, s.err
}

func TestBuy_StateToStatus(t *testing.T) {
	flow := &stubPurchaser{begin: &purchase.Result{State: purchase.PaymentRedirected, RedirectURL: "https://pay.example"}}
	h := NewPurchaseHandler(flow, nil, logging.Discard())

	anon := gin.New()
	anon.POST("/content/:id/buy", h.Buy)
	w := send(anon, http.MethodPost, "/content/"+uuid.NewString()+"/buy", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(purchase.LoginRequired))

	r := gin.New()
	r.POST("/content/:id/buy", as(&models.User{ID: uuid.New()}), h.Buy)
	w = send(r, http.MethodPost, "/content/"+uuid.NewString()+"/buy", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://pay.example")

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/content/nope/buy", nil).Code)

	flow.begin, flow.err = nil, purchase.ErrNotPurchasable
	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, "/content/"+uuid.NewString()+"/buy", nil).Code)
}

type stubOrders map[string]*models.Order

func (s stubOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := s[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return o, nil
}

type stubSubscriptions struct{ completed []string }

func (s *stubSubscriptions) Current(context.Context, uuid.UUID) (models.Plan, *models.SubscriptionRecord, error) {
	return models.PlanFree, nil, nil
}

func (s *stubSubscriptions) Checkout(_ context.Context, _ *models.User, plan models.Plan) (*subscription.Result, error) {
	return &subscription.Result{Outcome: subscription.Redirected, Plan: plan}, nil
}

func (s *stubSubscriptions) Complete(_ context.Context, id string) (*subscription.Result, error) {
	s.completed = append(s.completed, id)
	return &subscription.Result{Outcome: subscription.Activated}, nil
}

func TestWebhook_DispatchesByKind(t *testing.T) {
	orders := stubOrders{
		"ORD-c": {ID: "ORD-c", Kind: models.OrderContent, Status: models.OrderPending},
		"ORD-s": {ID: "ORD-s", Kind: models.OrderSubscription, Status: models.OrderPending},
		"ORD-d": {ID: "ORD-d", Kind: models.OrderContent, Status: models.OrderSettled},
	}
	flow := &stubPurchaser{complete: &purchase.Result{State: purchase.RecordPersisted}}
	subs := &stubSubscriptions{}
	r := gin.New()
	r.POST("/webhook", NewWebhookHandler(orders, flow, subs, logging.Discard()).HandlePaymentNotification)

	w := send(r, http.MethodPost, "/webhook", gin.H{"order_id": "ORD-c", "transaction_status": "settlement"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(purchase.RecordPersisted))

	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/webhook", gin.H{"order_id": "ORD-s"}).Code)
	assert.Equal(t, []string{"ORD-s"}, subs.completed)

	w = send(r, http.MethodPost, "/webhook", gin.H{"order_id": "ORD-d"})
	assert.Contains(t, w.Body.String(), "duplicate")
	assert.Equal(t, []string{"complete:ORD-c"}, flow.calls)

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/webhook", gin.H{"order_id": "ORD-x"}).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/webhook", gin.H{}).Code)
}

type stubTickets struct{ err error }

func (s stubTickets) ListEvents(context.Context) ([]models.Event, error) { return nil, nil }
func (s stubTickets) MyTickets(context.Context, *models.User) ([]models.Ticket, error) {
	return nil, nil
}
func (s stubTickets) CreateEvent(_ context.Context, in ticketing.EventInput) (*models.Event, error) {
	return &models.Event{Title: in.Title, Capacity: in.Capacity, AvailableTickets: in.Capacity}, nil
}
func (s stubTickets) Buy(context.Context, *models.User, uuid.UUID) (*models.Ticket, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Ticket{ID: uuid.New()}, nil
}
func (s stubTickets) VerifyQR(context.Context, string) (*models.Ticket, error) {
	return nil, ticketing.ErrInvalidQR
}

func TestEvents(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	r := gin.New()
	r.POST("/events/:id/tickets", as(user), NewEventHandler(stubTickets{err: backend.ErrSoldOut}, logging.Discard()).Buy)
	r.POST("/ok/:id/tickets", as(user), NewEventHandler(stubTickets{}, logging.Discard()).Buy)
	r.POST("/past/:id/tickets", as(user), NewEventHandler(stubTickets{err: backend.ErrEventStarted}, logging.Discard()).Buy)
	r.POST("/verify", NewEventHandler(stubTickets{}, logging.Discard()).Verify)

	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, "/events/"+uuid.NewString()+"/tickets", nil).Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/ok/"+uuid.NewString()+"/tickets", nil).Code)
	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, "/past/"+uuid.NewString()+"/tickets", nil).Code)

	w := send(r, http.MethodPost, "/verify", gin.H{"payload": "mmt1.x.y"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":false}`, w.Body.String())
}

type stubSocial struct{ known map[uuid.UUID]bool }

func (s stubSocial) ToggleLike(_ context.Context, _, contentID uuid.UUID) (bool, error) {
	if !s.known[contentID] {
		return false, backend.ErrNotFound
	}
	return true, nil
}
func (s stubSocial) SubscriberCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func TestToggleLike(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	item := uuid.New()
	feed := &changes{}
	h := NewCatalogHandler(nil, stubSocial{known: map[uuid.UUID]bool{item: true}}, nil, nil, feed, logging.Discard())
	r := gin.New()
	r.POST("/content/:id/like", as(user), h.ToggleLike)

	w := send(r, http.MethodPost, "/content/"+item.String()+"/like", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/content/"+uuid.NewString()+"/like", nil).Code)
	assert.Equal(t, []string{"likes"}, tables(*feed))
}

type stubAdminStore struct {
	moderated []models.ApprovalStatus
	banned    map[uuid.UUID]bool
}

func (s *stubAdminStore) DashboardStats(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{Users: 3}, nil
}
func (s *stubAdminStore) ListContent(context.Context, repository.ContentFilter) ([]models.ContentItem, error) {
	return nil, nil
}
func (s *stubAdminStore) SetContentStatus(_ context.Context, id uuid.UUID, st models.ApprovalStatus) (*models.ContentItem, error) {
	if len(s.moderated) > 0 {
		return nil, backend.ErrConflict
	}
	s.moderated = append(s.moderated, st)
	return &models.ContentItem{ID: id, Status: st}, nil
}
func (s *stubAdminStore) SetBanned(_ context.Context, id uuid.UUID, banned bool) error {
	s.banned[id] = banned
	return nil
}
func (s *stubAdminStore) RefundPurchase(context.Context, uuid.UUID) (*models.PurchaseRecord, error) {
	return nil, backend.ErrNotFound
}

type changes []realtime.Change

func (c *changes) Publish(_ context.Context, ch realtime.Change) { *c = append(*c, ch) }

func tables(cs changes) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Table)
	}
	return out
}

type evictions []uuid.UUID

func (e *evictions) Evict(id uuid.UUID) { *e = append(*e, id) }

func TestAdmin(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	store := &stubAdminStore{banned: map[uuid.UUID]bool{}}
	ev := &evictions{}
	feed := &changes{}
	h := NewAdminHandler(store, ev, feed, logging.Discard())
	r := gin.New()
	g := r.Group("/admin", as(admin))
	g.GET("/dashboard", h.Dashboard)
	g.POST("/content/:id/approve", h.Approve)
	g.POST("/users/:id/ban", h.Ban)
	g.POST("/purchases/:id/refund", h.Refund)

	w := send(r, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":3`)

	item := uuid.NewString()
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/admin/content/"+item+"/approve", nil).Code)
	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, "/admin/content/"+item+"/approve", nil).Code)
	assert.Equal(t, []string{"moderation_queue", "content_items"}, tables(*feed))

	target := uuid.New()
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/admin/users/"+target.String()+"/ban", nil).Code)
	assert.True(t, store.banned[target])
	assert.Equal(t, evictions{target}, *ev)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPost, "/admin/users/"+admin.ID.String()+"/ban", nil).Code)

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/admin/purchases/"+uuid.NewString()+"/refund", nil).Code)
}

func TestAdmin_RejectStaysOffPublicFeed(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	feed := &changes{}
	h := NewAdminHandler(&stubAdminStore{banned: map[uuid.UUID]bool{}}, &evictions{}, feed, logging.Discard())
	r := gin.New()
	r.POST("/admin/content/:id/reject", as(admin), h.Reject)

	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/admin/content/"+uuid.NewString()+"/reject", nil).Code)
	assert.Equal(t, []string{"moderation_queue"}, tables(*feed))
}

type stubUploader struct {
	res *upload.Result
	got upload.Request
}

func (s *stubUploader) Upload(_ context.Context, _ *models.User, req upload.Request) (*upload.Result, error) {
	s.got = req
	return s.res, nil
}

func (s *stubUploader) CanUpload(context.Context, uuid.UUID) (quota.Decision, error) {
	return s.res.Decision, nil
}

func multipartBody(t *testing.T, fields map[string]string, file string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("media", file)
	require.NoError(t, err)
	_, err = fw.Write([]byte("ID3\x03\x00\x00\x00"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	flow := &stubUploader{res: &upload.Result{Allowed: false, Decision: quota.Decision{CurrentCount: 3, Limit: 3, Plan: models.PlanFree}}}
	h := NewUploadHandler(flow, flow, logging.Discard())
	r := gin.New()
	r.POST("/uploads", as(&models.User{ID: uuid.New()}), h.Upload)
	r.GET("/uploads/quota", as(&models.User{ID: uuid.New()}), h.Quota)

	body, ct := multipartBody(t, map[string]string{"kind": "track", "title": "Song", "price_cents": "150"}, "song.mp3")
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.KindTrack, flow.got.Kind)
	assert.Equal(t, int64(150), flow.got.PriceCents)
	assert.Equal(t, "song.mp3", flow.got.Media.Name)
	assert.Nil(t, flow.got.Cover)

	w = send(r, http.MethodGet, "/uploads/quota", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":3`)

	body, ct = multipartBody(t, map[string]string{"price_cents": "abc"}, "song.mp3")
	req = httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
