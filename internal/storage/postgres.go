package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"nichescout/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = fmt.Errorf("not found")

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// EnsureSchema creates the tables the service writes to. Idempotent, safe
// to run on every start.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS keyword_opportunities (
			id BIGSERIAL PRIMARY KEY,
			keyword TEXT NOT NULL UNIQUE,
			total_products INTEGER NOT NULL DEFAULT 0,
			average_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			average_rating NUMERIC(3,1) NOT NULL DEFAULT 0,
			competition_level TEXT NOT NULL DEFAULT '',
			competition_score INTEGER NOT NULL DEFAULT 0,
			opportunity_score INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS trending_products (
			id BIGSERIAL PRIMARY KEY,
			product_url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			store_name TEXT NOT NULL DEFAULT '',
			ratings_count INTEGER NOT NULL DEFAULT 0,
			average_rating NUMERIC(3,1) NOT NULL DEFAULT 0,
			growth_rate NUMERIC(10,2) NOT NULL DEFAULT 0,
			tags TEXT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_alerts (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			data JSONB,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_alerts_user ON user_alerts (user_id, created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveOpportunity upserts a keyword scan result, keyed by keyword.
func (s *PostgresStore) SaveOpportunity(ctx context.Context, o *domain.Opportunity) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO keyword_opportunities
		   (keyword, total_products, average_price, average_rating, competition_level, competition_score, opportunity_score, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (keyword) DO UPDATE SET
		   total_products = EXCLUDED.total_products,
		   average_price = EXCLUDED.average_price,
		   average_rating = EXCLUDED.average_rating,
		   competition_level = EXCLUDED.competition_level,
		   competition_score = EXCLUDED.competition_score,
		   opportunity_score = EXCLUDED.opportunity_score,
		   updated_at = NOW()`,
		o.Keyword, o.TotalListings, o.AveragePrice, o.AverageRating,
		o.CompetitionTier, o.CompetitionScore, o.OpportunityScore,
	)
	return err
}

// TopOpportunities returns the highest-scoring keywords above minScore.
func (s *PostgresStore) TopOpportunities(ctx context.Context, minScore, limit int) ([]domain.Opportunity, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, keyword, total_products, average_price, average_rating,
		        competition_level, competition_score, opportunity_score, updated_at
		 FROM keyword_opportunities
		 WHERE opportunity_score > $1
		 ORDER BY opportunity_score DESC, updated_at DESC
		 LIMIT $2`,
		minScore, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity
		if err := rows.Scan(&o.ID, &o.Keyword, &o.TotalListings, &o.AveragePrice, &o.AverageRating,
			&o.CompetitionTier, &o.CompetitionScore, &o.OpportunityScore, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveTrendingProduct upserts a product snapshot, keyed by product URL.
func (s *PostgresStore) SaveTrendingProduct(ctx context.Context, p *domain.TrendingProduct) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO trending_products
		   (product_url, title, price, store_name, ratings_count, average_rating, growth_rate, tags, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 ON CONFLICT (product_url) DO UPDATE SET
		   title = EXCLUDED.title,
		   price = EXCLUDED.price,
		   store_name = EXCLUDED.store_name,
		   ratings_count = EXCLUDED.ratings_count,
		   average_rating = EXCLUDED.average_rating,
		   growth_rate = EXCLUDED.growth_rate,
		   tags = EXCLUDED.tags,
		   updated_at = NOW()`,
		p.ProductURL, p.Title, p.Price, p.StoreName, p.RatingCount,
		p.AverageRating, p.GrowthRate, p.Tags,
	)
	return err
}

// TrendingProducts returns products whose growth rate exceeds minGrowth.
func (s *PostgresStore) TrendingProducts(ctx context.Context, minGrowth float64, limit int) ([]domain.TrendingProduct, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_url, title, price, store_name, ratings_count,
		        average_rating, growth_rate, tags, updated_at
		 FROM trending_products
		 WHERE growth_rate > $1
		 ORDER BY growth_rate DESC, updated_at DESC
		 LIMIT $2`,
		minGrowth, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrendingProduct
	for rows.Next() {
		var p domain.TrendingProduct
		if err := rows.Scan(&p.ID, &p.ProductURL, &p.Title, &p.Price, &p.StoreName, &p.RatingCount,
			&p.AverageRating, &p.GrowthRate, &p.Tags, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveAlert inserts a notification for a user.
func (s *PostgresStore) SaveAlert(ctx context.Context, a *domain.Alert) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO user_alerts (user_id, alert_type, title, description, data, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		 RETURNING id`,
		a.UserID, a.AlertType, a.Title, a.Description, a.Data,
	).Scan(&a.ID)
}

// Alerts returns a user's most recent notifications plus the unread total.
// Broadcast alerts raised by the scanner live under the 'system' user and
// are visible to everyone.
func (s *PostgresStore) Alerts(ctx context.Context, userID string, limit int) ([]domain.Alert, int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, alert_type, title, description, data, is_read, created_at
		 FROM user_alerts
		 WHERE user_id = $1 OR user_id = 'system'
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.AlertType, &a.Title, &a.Description, &a.Data, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_alerts WHERE (user_id = $1 OR user_id = 'system') AND is_read = FALSE`,
		userID,
	).Scan(&unread)
	return out, unread, err
}

// MarkAlertRead flags one of the user's alerts as read.
func (s *PostgresStore) MarkAlertRead(ctx context.Context, userID string, alertID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE user_alerts SET is_read = TRUE WHERE id = $1 AND (user_id = $2 OR user_id = 'system')`,
		alertID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
