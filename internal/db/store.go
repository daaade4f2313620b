package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the read/write surface the pipeline reconciles against.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// NameMarketPair identifies a product within one supermarket.
type NameMarketPair struct {
	Name          string
	SupermarketID string
}

// keep tuple-IN predicates well under sqlite's variable limit
const lookupChunk = 400

func (s *Store) ListSupermarkets(ctx context.Context) ([]Supermarket, error) {
	var out []Supermarket
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing supermarkets: %w", err)
	}
	return out, nil
}

func (s *Store) CreateSupermarket(ctx context.Context, name string) (*Supermarket, error) {
	m := Supermarket{Name: name}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("creating supermarket %q: %w", name, err)
	}
	return &m, nil
}

// FindProductsByNameAndSupermarket looks up every pair in bulk: a few
// hundred pairs per scheduled tick, so one tuple-IN query per chunk
// instead of one query per record.
func (s *Store) FindProductsByNameAndSupermarket(ctx context.Context, pairs []NameMarketPair) ([]Product, error) {
	var out []Product
	for start := 0; start < len(pairs); start += lookupChunk {
		end := start + lookupChunk
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*2)
		for _, p := range chunk {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, p.Name, p.SupermarketID)
		}

		var batch []Product
		err := s.db.WithContext(ctx).
			Where("(name, supermarket_id) IN ("+strings.Join(placeholders, ", ")+")", args...).
			Find(&batch).Error
		if err != nil {
			return nil, fmt.Errorf("bulk product lookup (%d pairs): %w", len(chunk), err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// InsertProducts bulk-inserts with conflict-skip on (name, supermarket_id),
// so a feed line delivered twice in one run lands exactly once. Returns the
// number of rows actually written.
func (s *Store) InsertProducts(ctx context.Context, rows []Product) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "supermarket_id"}},
		DoNothing: true,
	}).CreateInBatches(&rows, 500)
	if tx.Error != nil {
		return 0, fmt.Errorf("bulk product insert (%d rows): %w", len(rows), tx.Error)
	}
	return tx.RowsAffected, nil
}

// UpdateProductPrice overwrites the current price and promotional week of
// one product; the superseded values are expected to be archived first.
func (s *Store) UpdateProductPrice(ctx context.Context, id string, price float64, oldPrice *float64, validFrom, validUntil string) error {
	err := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).
		Updates(map[string]any{
			"price":       price,
			"old_price":   oldPrice,
			"valid_from":  validFrom,
			"valid_until": validUntil,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("updating product %s: %w", id, err)
	}
	return nil
}

func (s *Store) InsertPriceHistory(ctx context.Context, entry PriceHistory) error {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("inserting price history for product %s: %w", entry.ProductID, err)
	}
	return nil
}

func (s *Store) CreateFeedRun(ctx context.Context, source string) (*FeedRun, error) {
	run := FeedRun{Source: source, Status: RunPending}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("creating feed run: %w", err)
	}
	return &run, nil
}

// FinishFeedRun stamps the final status and counters on the ledger row.
func (s *Store) FinishFeedRun(ctx context.Context, run *FeedRun) error {
	now := time.Now()
	run.FinishedAt = &now
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("finishing feed run %d: %w", run.RunID, err)
	}
	return nil
}
