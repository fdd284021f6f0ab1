package subscription

import (
	"time"

	"media-market/internal/models"
	"media-market/internal/quota"
)

const period = 30 * 24 * time.Hour

type Plan struct {
	Tag         models.Plan `json:"plan"`
	Name        string      `json:"name"`
	PriceCents  int64       `json:"price_cents"`
	PeriodDays  int         `json:"period_days"`
	UploadLimit int         `json:"upload_limit"`
}

// Plans lists the tiers in ascending price order.
var Plans = []Plan{
	{Tag: models.PlanFree, Name: "Free", PriceCents: 0, PeriodDays: 0, UploadLimit: quota.LimitFor(models.PlanFree)},
	{Tag: models.PlanStandard, Name: "Standard", PriceCents: 499, PeriodDays: 30, UploadLimit: quota.LimitFor(models.PlanStandard)},
	{Tag: models.PlanPremium, Name: "Premium", PriceCents: 999, PeriodDays: 30, UploadLimit: quota.LimitFor(models.PlanPremium)},
}

func lookup(tag models.Plan) (Plan, bool) {
	for _, p := range Plans {
		if p.Tag == tag {
			return p, true
		}
	}
	return Plan{}, false
}
