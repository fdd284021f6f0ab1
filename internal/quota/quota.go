// Package quota decides whether a user may start another upload.
package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

// Unbounded is the limit of plans without an upload cap.
const Unbounded = -1

var limits = map[models.Plan]int{
	models.PlanFree:     3,
	models.PlanStandard: 10,
	models.PlanPremium:  Unbounded,
}

// LimitFor returns the active-item cap of plan. Unknown plans get the free
// cap.
func LimitFor(plan models.Plan) int {
	if l, ok := limits[plan]; ok {
		return l
	}
	return limits[models.PlanFree]
}

// Usage reports a user's active item count and plan.
type Usage interface {
	CheckUploadLimits(ctx context.Context, userID uuid.UUID) (backend.UploadUsage, error)
}

type Decision struct {
	Allowed      bool        `json:"allowed"`
	CurrentCount int         `json:"current_count"`
	Limit        int         `json:"limit"`
	Plan         models.Plan `json:"plan"`
}

type Evaluator struct {
	usage Usage
}

func NewEvaluator(usage Usage) *Evaluator {
	return &Evaluator{usage: usage}
}

// CanUpload is advisory; the insert re-checks the limit atomically.
func (e *Evaluator) CanUpload(ctx context.Context, userID uuid.UUID) (Decision, error) {
	u, err := e.usage.CheckUploadLimits(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("check upload limits: %w", err)
	}

	limit := LimitFor(u.Plan)
	return Decision{
		Allowed:      limit == Unbounded || u.ActiveItems < limit,
		CurrentCount: u.ActiveItems,
		Limit:        limit,
		Plan:         u.Plan,
	}, nil
}
