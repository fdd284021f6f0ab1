package models

import (
	"time"

	"github.com/google/uuid"
)

// We use 'db' tags for sqlx to map the snake_case columns onto our fields
// and 'json' tags for the API responses.

// User is an identity known to the marketplace. The id is the identity
// provider's subject.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        Role      `db:"role" json:"role"`
	Banned      bool      `db:"banned" json:"banned"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user may reach the admin surface.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Profile is the 1:1 extension of User.
type Profile struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Plan       Plan      `db:"plan" json:"plan"`
	AvatarPath string    `db:"avatar_path" json:"avatar_path"`
	BannerPath string    `db:"banner_path" json:"banner_path"`
	Bio        string    `db:"bio" json:"bio"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ContentItem is an uploaded video or track.
type ContentItem struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Kind        ContentKind    `db:"kind" json:"kind"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	PriceCents  int64          `db:"price_cents" json:"price_cents"`
	OwnerID     uuid.UUID      `db:"owner_id" json:"owner_id"`
	MediaPath   string         `db:"media_path" json:"-"`
	CoverPath   string         `db:"cover_path" json:"-"`
	Status      ApprovalStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// IsFree reports whether the item can be added to a library without payment.
func (c *ContentItem) IsFree() bool {
	return c.PriceCents == 0
}

// PurchaseRecord is created exactly once per (buyer, content) pair.
type PurchaseRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BuyerID    uuid.UUID `db:"buyer_id" json:"buyer_id"`
	ContentID  uuid.UUID `db:"content_id" json:"content_id"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	OrderID    string    `db:"order_id" json:"order_id"`
	Refunded   bool      `db:"refunded" json:"refunded"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SubscriptionRecord holds a user's plan. At most one record per user is active.
type SubscriptionRecord struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	UserID    uuid.UUID          `db:"user_id" json:"user_id"`
	Plan      Plan               `db:"plan" json:"plan"`
	Status    SubscriptionStatus `db:"status" json:"status"`
	ExpiresAt *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

// IsActiveAt reports whether the record grants its plan at the given instant.
func (s *SubscriptionRecord) IsActiveAt(now time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// Order is a pending or settled payment for a content item or a plan.
type Order struct {
	ID            string      `db:"id" json:"id"`
	BuyerID       uuid.UUID   `db:"buyer_id" json:"buyer_id"`
	Kind          OrderKind   `db:"kind" json:"kind"`
	ItemRef       string      `db:"item_ref" json:"item_ref"`
	AmountCents   int64       `db:"amount_cents" json:"amount_cents"`
	Status        OrderStatus `db:"status" json:"status"`
	TransactionID *string     `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	SettledAt     *time.Time  `db:"settled_at" json:"settled_at,omitempty"`
}

// Event is a ticketed happening. AvailableTickets never goes below zero.
type Event struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Venue            string    `db:"venue" json:"venue"`
	StartsAt         time.Time `db:"starts_at" json:"starts_at"`
	PriceCents       int64     `db:"price_cents" json:"price_cents"`
	Capacity         int       `db:"capacity" json:"capacity"`
	AvailableTickets int       `db:"available_tickets" json:"available_tickets"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Ticket references an event and its owner.
type Ticket struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	QRPayload string    `db:"qr_payload" json:"qr_payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	Users        int64 `db:"users" json:"users"`
	PendingItems int64 `db:"pending_items" json:"pending_items"`
	Purchases    int64 `db:"purchases" json:"purchases"`
	RevenueCents int64 `db:"revenue_cents" json:"revenue_cents"`
	TicketsSold  int64 `db:"tickets_sold" json:"tickets_sold"`
}
