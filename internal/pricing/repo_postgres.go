package pricing

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepo looks up service rates. SELECT only; rate management is an
// operator concern outside this service.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindServiceRate(ctx context.Context, serviceCode string, at time.Time) (ServiceRate, bool, error) {
	const q = `
SELECT id, service_code, currency, rate_per_minute_minor,
       billing_increment_seconds, minimum_billable_seconds,
       effective_from, effective_to, status, created_at, updated_at
FROM service_rates
WHERE service_code = $1
  AND status = 'active'
  AND effective_from <= $2
  AND (effective_to IS NULL OR effective_to > $2)
ORDER BY effective_from DESC
LIMIT 1
`
	var rate ServiceRate
	var to sql.NullTime
	err := r.db.QueryRowContext(ctx, q, serviceCode, at).Scan(
		&rate.ID, &rate.ServiceCode, &rate.Currency, &rate.RatePerMinuteMinor,
		&rate.BillingIncrementSeconds, &rate.MinimumBillableSeconds,
		&rate.EffectiveFrom, &to, &rate.Status, &rate.CreatedAt, &rate.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return ServiceRate{}, false, nil
	}
	if err != nil {
		return ServiceRate{}, false, err
	}
	if to.Valid {
		rate.EffectiveTo = &to.Time
	}
	return rate, true, nil
}
