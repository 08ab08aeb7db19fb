package blocklist

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type entryRow struct {
	ID       uint     `gorm:"primaryKey"`
	Phrase   string   `gorm:"column:phrase"`
	Language string   `gorm:"column:language"`
	Severity Severity `gorm:"column:severity"`
}

func (entryRow) TableName() string {
	return "blocklist_entries"
}

// PostgresStore reads the managed blocklist from a postgres table.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) ([]Entry, error) {
	var rows []entryRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load blocklist entries: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			Phrase:   row.Phrase,
			Language: row.Language,
			Severity: row.Severity,
		})
	}
	return entries, nil
}

// Add persists a new entry so operators can block an emerging phrase
// without a deploy. The caller reloads the checker afterwards.
func (s *PostgresStore) Add(ctx context.Context, entry Entry) error {
	row := entryRow{Phrase: entry.Phrase, Language: entry.Language, Severity: entry.Severity}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to persist blocklist entry: %w", err)
	}
	return nil
}
