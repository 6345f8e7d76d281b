package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var testPolicy = ClaimPolicy{
	LeaseMinutes:            15,
	MaxAttempts:             3,
	MaxGestions:             6,
	MinHoursBetweenAttempts: 4,
}

// testPool connects to the database named by TEST_DATABASE_URL and brings the
// schema up to date. Tests that need it are skipped when the variable is
// unset so the suite stays runnable without a local postgres.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open migration connection: %v", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("set goose dialect: %v", err)
	}
	if err := goose.Up(conn, "."); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	_ = conn.Close()

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func seedCampaign(t *testing.T, pool *pgxpool.Pool, key string) {
	t.Helper()

	ctx := context.Background()
	if _, err := pool.Exec(ctx, `DELETE FROM campaigns WHERE key = $1`, key); err != nil {
		t.Fatalf("clean campaign %s: %v", key, err)
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO campaigns (key, country, pipeline, stage, status, no_time_limit)
		VALUES ($1, 'CO', 'arriendos', 'contacto', 'active', TRUE)`, key)
	if err != nil {
		t.Fatalf("seed campaign %s: %v", key, err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM campaigns WHERE key = $1`, key)
	})
}

func seedDeal(t *testing.T, pool *pgxpool.Pool, campaignKey string, attempts int, updatedAt time.Time) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO campaign_deals (campaign_key, crm_deal_id, phone_primary, has_valid_phone, attempts, updated_at)
		VALUES ($1, $2, '+573001234567', TRUE, $3, $4)
		RETURNING id`,
		campaignKey, uuid.NewString(), attempts, updatedAt,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed deal: %v", err)
	}
	return id
}

func TestClaimNextFairnessOrdering(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	key := "test-claim-fairness"
	seedCampaign(t, pool, key)

	base := time.Now().Add(-time.Hour)
	seedDeal(t, pool, key, 2, base)
	freshest := seedDeal(t, pool, key, 0, base.Add(30*time.Minute))
	second := seedDeal(t, pool, key, 1, base.Add(10*time.Minute))

	deal, err := repo.ClaimNext(context.Background(), key, uuid.New(), testPolicy)
	if err != nil {
		t.Fatalf("ClaimNext() error = %v", err)
	}
	if deal == nil || deal.ID != freshest {
		t.Fatalf("ClaimNext() = %v, want the attempts=0 deal %s", deal, freshest)
	}
	if deal.LockExpiresAt == nil || !deal.LockExpiresAt.After(time.Now()) {
		t.Fatalf("claimed deal lease = %v, want a future expiry", deal.LockExpiresAt)
	}

	deal, err = repo.ClaimNext(context.Background(), key, uuid.New(), testPolicy)
	if err != nil {
		t.Fatalf("second ClaimNext() error = %v", err)
	}
	if deal == nil || deal.ID != second {
		t.Fatalf("second ClaimNext() = %v, want the attempts=1 deal %s", deal, second)
	}
}

func TestClaimNextSingleWinner(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	key := "test-claim-single-winner"
	seedCampaign(t, pool, key)
	seedDeal(t, pool, key, 0, time.Now().Add(-time.Hour))

	const claimants = 8
	results := make(chan *Deal, claimants)
	errs := make(chan error, claimants)

	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deal, err := repo.ClaimNext(context.Background(), key, uuid.New(), testPolicy)
			if err != nil {
				errs <- err
				return
			}
			results <- deal
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent ClaimNext() error = %v", err)
	}

	winners := 0
	for deal := range results {
		if deal != nil {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestClaimNextExcludesMaxedAttempts(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	key := "test-claim-max-attempts"
	seedCampaign(t, pool, key)
	seedDeal(t, pool, key, testPolicy.MaxAttempts, time.Now().Add(-time.Hour))

	deal, err := repo.ClaimNext(context.Background(), key, uuid.New(), testPolicy)
	if err != nil {
		t.Fatalf("ClaimNext() error = %v", err)
	}
	if deal != nil {
		t.Fatalf("ClaimNext() = %v, want nil for a maxed-out deal", deal)
	}
}

func TestRecordCallStartScopedToCampaign(t *testing.T) {
	pool := testPool(t)
	repo := New(pool)
	key := "test-call-start-scope"
	other := "test-call-start-scope-other"
	seedCampaign(t, pool, key)
	seedCampaign(t, pool, other)
	id := seedDeal(t, pool, key, 0, time.Now())

	if err := repo.RecordCallStart(context.Background(), other, id); err != nil {
		t.Fatalf("RecordCallStart() error = %v", err)
	}
	deal, err := repo.GetByID(context.Background(), key, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if deal.Attempts != 0 {
		t.Fatalf("attempts after foreign-campaign call start = %d, want 0", deal.Attempts)
	}

	if err := repo.RecordCallStart(context.Background(), key, id); err != nil {
		t.Fatalf("RecordCallStart() error = %v", err)
	}
	deal, err = repo.GetByID(context.Background(), key, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if deal.Attempts != 1 || deal.LastAttemptAt == nil {
		t.Fatalf("attempts = %d lastAttemptAt = %v, want 1 and a timestamp", deal.Attempts, deal.LastAttemptAt)
	}
}
