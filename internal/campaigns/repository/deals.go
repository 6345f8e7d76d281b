package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DealInsert carries one deal row for bulk loading at campaign creation.
type DealInsert struct {
	CampaignKey    string
	CRMDealID      string
	Title          string
	ContactName    string
	PhonePrimary   *string
	PhoneSecondary *string
	HasValidPhone  bool
}

// BulkInsertDeals loads the campaign's deal rows in a single batch.
func (r *Repository) BulkInsertDeals(ctx context.Context, deals []DealInsert) error {
	if len(deals) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]interface{}, 0, len(deals))
	for _, d := range deals {
		rows = append(rows, []interface{}{
			d.CampaignKey, d.CRMDealID, d.Title, d.ContactName,
			d.PhonePrimary, d.PhoneSecondary, d.HasValidPhone,
			"pending", 0, 0, now, now,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"campaign_deals"},
		[]string{
			"campaign_key", "crm_deal_id", "title", "contact_name",
			"phone_primary", "phone_secondary", "has_valid_phone",
			"status", "attempts", "gestions", "created_at", "updated_at",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert deals: %w", err)
	}

	return nil
}
