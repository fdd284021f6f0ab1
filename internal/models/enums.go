package models

import "strings"

type Role string

const (
	RoleUser   Role = "user"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

// Plan is a subscription tier tag.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// NormalizePlan maps free-form tags onto a known plan; unknown tags are free.
func NormalizePlan(tag string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(tag))) {
	case PlanStandard:
		return PlanStandard
	case PlanPremium:
		return PlanPremium
	default:
		return PlanFree
	}
}

type ContentKind string

const (
	KindVideo ContentKind = "video"
	KindTrack ContentKind = "track"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type OrderKind string

const (
	OrderContent      OrderKind = "content"
	OrderSubscription OrderKind = "subscription"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderSettled OrderStatus = "settled"
	OrderFailed  OrderStatus = "failed"
)
