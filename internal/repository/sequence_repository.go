package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

// SequenceRepository hands out document numbers. NextNumber must run inside
// the transaction that inserts the document so that the counter increment
// and the insert commit or roll back together.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextNumber atomically increments the per-prefix, per-day counter and
// returns the formatted document number. The upsert makes concurrent
// creations of the same prefix+date take distinct values; the unique index
// on each number column backstops it.
func (r *SequenceRepository) NextNumber(ctx context.Context, prefix model.DocumentPrefix, t time.Time) (string, error) {
	var last int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (prefix, seq_date, last_number)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, seq_date)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, prefix, model.SequenceDate(t)).Scan(&last).Error
	if err != nil {
		return "", err
	}
	return model.FormatDocumentNumber(prefix, t, last), nil
}
