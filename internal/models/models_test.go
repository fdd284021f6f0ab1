package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "standard", want: PlanStandard},
		{in: " PREMIUM ", want: PlanPremium},
		{in: "", want: PlanFree},
		{in: "gold", want: PlanFree},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlan(tt.in), "NormalizePlan(%q)", tt.in)
	}
}

func TestSubscriptionRecordIsActiveAt(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	var nilRecord *SubscriptionRecord
	assert.False(t, nilRecord.IsActiveAt(now))

	assert.True(t, (&SubscriptionRecord{Status: SubscriptionActive}).IsActiveAt(now))
	assert.True(t, (&SubscriptionRecord{Status: SubscriptionActive, ExpiresAt: &future}).IsActiveAt(now))
	assert.False(t, (&SubscriptionRecord{Status: SubscriptionActive, ExpiresAt: &past}).IsActiveAt(now))
	assert.False(t, (&SubscriptionRecord{Status: SubscriptionCanceled, ExpiresAt: &future}).IsActiveAt(now))
}

func TestUserIsAdmin(t *testing.T) {
	var anonymous *User
	assert.False(t, anonymous.IsAdmin())
	assert.False(t, (&User{Role: RoleArtist}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
