// Package storage persists circulars, pages and extracted offers to
// Postgres. All writes are append-only inserts; re-running the pipeline
// for the same source circular creates a fresh circular with fresh pages
// and items (at-least-once, deduplication left to downstream cleanup).
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrE12345/kundeavis-scraper/internal/config"
	"github.com/MrE12345/kundeavis-scraper/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS circulars (
  id SERIAL PRIMARY KEY,
  source_id INTEGER NOT NULL,
  title TEXT,
  valid_from DATE,
  valid_to DATE,
  retrieved_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pages (
  id SERIAL PRIMARY KEY,
  circular_id INTEGER REFERENCES circulars(id) ON DELETE CASCADE,
  page_no INTEGER NOT NULL,
  image_url TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
  id SERIAL PRIMARY KEY,
  circular_id INTEGER REFERENCES circulars(id) ON DELETE CASCADE,
  page_id INTEGER REFERENCES pages(id) ON DELETE CASCADE,
  page INTEGER,
  product_text TEXT,
  price_raw TEXT,
  price_amount NUMERIC,
  currency TEXT,
  offer_type TEXT,
  multi_qty INTEGER,
  multi_price NUMERIC,
  unit TEXT,
  extracted_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_items_circ_page ON items(circular_id, page);
`

type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateCircular inserts a new circular row and returns its id. This is a
// plain insert: source_id carries no uniqueness constraint.
func (s *Store) CreateCircular(ctx context.Context, c models.Circular) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO circulars (source_id, title, valid_from, valid_to, retrieved_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.SourceID, c.Title, c.ValidFrom, c.ValidTo, c.RetrievedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert circular (source_id=%d): %w", c.SourceID, err)
	}
	return id, nil
}

// CreatePage inserts one page row under a circular and returns its id.
func (s *Store) CreatePage(ctx context.Context, page models.Page) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO pages (circular_id, page_no, image_url)
		VALUES ($1, $2, $3)
		RETURNING id
	`, page.CircularID, page.PageNo, page.ImageURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert page %d: %w", page.PageNo, err)
	}
	return id, nil
}

// SaveOffers inserts every offer extracted from one page in a single batch.
func (s *Store) SaveOffers(ctx context.Context, circularID, pageID int64, pageNo int, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, offer := range offers {
		batch.Queue(`
			INSERT INTO items
			  (circular_id, page_id, page, product_text, price_raw, price_amount,
			   currency, offer_type, multi_qty, multi_price, unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, circularID, pageID, pageNo, offer.ProductText, offer.PriceRaw, offer.PriceAmount,
			offer.Currency, string(offer.OfferType), offer.MultiQty, offer.MultiPrice, offer.Unit)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert item %d on page %d: %w", i, pageNo, err)
		}
	}
	return nil
}
