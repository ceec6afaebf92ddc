package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/searchhub/searchhub/internal/domain/history"
	"github.com/searchhub/searchhub/internal/observability"
)

// HistoryLimit caps how many entries a principal gets back when listing.
const HistoryLimit = 20

type HistoryRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewHistoryRepo(pool *pgxpool.Pool, obs *observability.Prom) *HistoryRepo {
	return &HistoryRepo{pool: pool, obs: obs}
}

func (r *HistoryRepo) Append(ctx context.Context, owner, query string, ts time.Time) error {
	return r.obs.ObserveDB("history.append", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO search_history (owner_email, query, ts) VALUES ($1, $2, $3)`,
			owner, query, ts,
		)

		return err
	})
}

// ListByOwner returns the owner's entries newest first, capped at
// HistoryLimit.
func (r *HistoryRepo) ListByOwner(ctx context.Context, owner string) ([]history.Entry, error) {
	var out []history.Entry

	err := r.obs.ObserveDB("history.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT owner_email, query, ts
			 FROM search_history
			 WHERE owner_email = $1
			 ORDER BY ts DESC, id DESC
			 LIMIT $2`,
			owner, HistoryLimit,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var e history.Entry

			err = rows.Scan(&e.Owner, &e.Query, &e.Timestamp)

			if err != nil {
				return err
			}

			out = append(out, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Clear removes every entry owned by the principal. Clearing an empty
// history is a no-op, not an error.
func (r *HistoryRepo) Clear(ctx context.Context, owner string) error {
	return r.obs.ObserveDB("history.clear", func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM search_history WHERE owner_email = $1`,
			owner,
		)

		return err
	})
}

// ListAll feeds the admin aggregation with every recorded entry.
func (r *HistoryRepo) ListAll(ctx context.Context) ([]history.Entry, error) {
	var out []history.Entry

	err := r.obs.ObserveDB("history.list_all", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT owner_email, query, ts
			 FROM search_history
			 ORDER BY ts DESC, id DESC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var e history.Entry

			err = rows.Scan(&e.Owner, &e.Query, &e.Timestamp)

			if err != nil {
				return err
			}

			out = append(out, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
