// Package backend declares the contracts of the hosted collaborators the
// marketplace talks to: the identity service, object storage, the payment
// session creator and the server-side procedures.
package backend

//go:generate mockgen -destination=mocks/mocks.go -package=mocks media-market/internal/backend Identity,ObjectStorage,PaymentSessions,PaymentVerifier,Procedures

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"media-market/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("duplicate")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSoldOut            = errors.New("event sold out")
	ErrEventStarted       = errors.New("event already started")
	ErrQuotaExceeded      = errors.New("upload quota exceeded")
	ErrConflict           = errors.New("state conflict")
)

// AuthSession is a session issued by the identity service.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
}

// Identity is the sign-in / sign-up / session surface.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string, attrs map[string]any) (*AuthSession, error)
	// GetSession returns ErrInvalidSession for unknown or expired tokens.
	GetSession(ctx context.Context, accessToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ObjectStorage stores media blobs.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error
	PublicURL(bucket, path string) string
}

// PaymentSessionRequest describes the item being paid for.
type PaymentSessionRequest struct {
	OrderID     string
	ItemID      string
	ItemName    string
	BuyerID     uuid.UUID
	BuyerEmail  string
	BuyerName   string
	AmountCents int64
	ReturnURL   string
	CancelURL   string
}

// PaymentSession is where the buyer must be redirected to pay.
type PaymentSession struct {
	RedirectURL string `json:"redirect_url"`
	Token       string `json:"token,omitempty"`
}

type PaymentSessions interface {
	CreateSession(ctx context.Context, req PaymentSessionRequest) (*PaymentSession, error)
}

// PaymentStatus is the provider's view of an order.
type PaymentStatus struct {
	OrderID       string
	TransactionID string
	Status        string
	Settled       bool
}

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, orderID string) (*PaymentStatus, error)
}

// PurchaseInput is the argument set of the finalize procedure.
type PurchaseInput struct {
	BuyerID    uuid.UUID
	ContentID  uuid.UUID
	PriceCents int64
	OrderID    string
}

// UploadUsage is what the upload limit check needs to know about a user.
type UploadUsage struct {
	ActiveItems int
	Plan        models.Plan
}

// Procedures is the server-side RPC surface. Each call is atomic on the
// server; callers never compose them from reads and writes.
type Procedures interface {
	// ProcessPurchase is idempotent per (buyer, content). created is false
	// when the record already existed.
	ProcessPurchase(ctx context.Context, in PurchaseInput) (created bool, err error)
	// PurchaseTicket decrements availability and inserts the ticket in one
	// step, or returns ErrSoldOut.
	PurchaseTicket(ctx context.Context, ticket models.Ticket) (*models.Ticket, error)
	ToggleLike(ctx context.Context, userID, contentID uuid.UUID) (liked bool, err error)
	SubscriberCount(ctx context.Context, artistID uuid.UUID) (int64, error)
	CheckUploadLimits(ctx context.Context, userID uuid.UUID) (UploadUsage, error)
}
