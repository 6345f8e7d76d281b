// Command phone-backfill re-runs phone candidate extraction over existing
// deals. Useful after a normalization rule change: stored numbers are fed
// back through the extractor and rows are updated only when the result
// differs.
package main

import (
	"context"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/config"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/db"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dealPhones struct {
	id             uuid.UUID
	country        string
	phonePrimary   *string
	phoneSecondary *string
	hasValidPhone  bool
	createdAt      time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting phone backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	const batchSize = 200

	var processed int
	var updated int

	cursorTime := time.Time{}
	cursorID := uuid.Nil

	for {
		deals, err := listDeals(ctx, pool, batchSize, cursorTime, cursorID)
		if err != nil {
			log.Error("failed to list deals", "error", err)
			break
		}
		if len(deals) == 0 {
			break
		}

		for _, deal := range deals {
			processed++
			cursorTime = deal.createdAt
			cursorID = deal.id

			fields := make([]string, 0, 2)
			if deal.phonePrimary != nil {
				fields = append(fields, *deal.phonePrimary)
			}
			if deal.phoneSecondary != nil {
				fields = append(fields, *deal.phoneSecondary)
			}

			result := phone.Extract(fields, deal.country)
			if unchanged(deal, result) {
				continue
			}

			if err := updateDeal(ctx, pool, deal.id, result); err != nil {
				log.Error("failed to update deal phones", "dealId", deal.id, "error", err)
				continue
			}
			updated++
		}
	}

	log.Info("phone backfill completed", "processed", processed, "updated", updated)
}

func unchanged(deal dealPhones, result phone.Result) bool {
	current := ""
	if deal.phonePrimary != nil {
		current = *deal.phonePrimary
	}
	currentSecondary := ""
	if deal.phoneSecondary != nil {
		currentSecondary = *deal.phoneSecondary
	}
	return current == result.Primary &&
		currentSecondary == result.Secondary &&
		deal.hasValidPhone == result.HasValidPhone()
}

func listDeals(ctx context.Context, pool *pgxpool.Pool, limit int, cursorTime time.Time, cursorID uuid.UUID) ([]dealPhones, error) {
	rows, err := pool.Query(ctx, `
    SELECT d.id, c.country, d.phone_primary, d.phone_secondary, d.has_valid_phone, d.created_at
    FROM campaign_deals d
    JOIN campaigns c ON c.key = d.campaign_key
    WHERE d.status = 'pending'
      AND (d.created_at > $1 OR (d.created_at = $1 AND d.id > $2))
    ORDER BY d.created_at ASC, d.id ASC
    LIMIT $3
  `, cursorTime, cursorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]dealPhones, 0)
	for rows.Next() {
		var deal dealPhones
		if err := rows.Scan(&deal.id, &deal.country, &deal.phonePrimary, &deal.phoneSecondary, &deal.hasValidPhone, &deal.createdAt); err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return deals, nil
}

func updateDeal(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, result phone.Result) error {
	var primary, secondary *string
	if result.Primary != "" {
		primary = &result.Primary
	}
	if result.Secondary != "" {
		secondary = &result.Secondary
	}

	_, err := pool.Exec(ctx, `
    UPDATE campaign_deals SET
      phone_primary = $2,
      phone_secondary = $3,
      has_valid_phone = $4,
      updated_at = now()
    WHERE id = $1
  `, id, primary, secondary, result.HasValidPhone())
	return err
}
