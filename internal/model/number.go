package model

import (
	"fmt"
	"time"
)

// DocumentPrefix identifies the numbering series a document belongs to.
type DocumentPrefix string

const (
	PrefixQuote    DocumentPrefix = "QT"
	PrefixContract DocumentPrefix = "CT"
	PrefixOrder    DocumentPrefix = "OD"
)

// DocumentSequence is one atomic counter row per prefix and calendar day.
// Incrementing it inside the transaction that inserts the document is what
// keeps concurrently generated numbers distinct.
type DocumentSequence struct {
	ID         uint           `gorm:"primaryKey"`
	Prefix     DocumentPrefix `gorm:"size:8;not null;uniqueIndex:uq_document_sequences_prefix_date"`
	SeqDate    string         `gorm:"size:8;not null;uniqueIndex:uq_document_sequences_prefix_date"`
	LastNumber int64          `gorm:"not null"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// SequenceDate renders the date component used in document numbers.
func SequenceDate(t time.Time) string {
	return t.UTC().Format("20060102")
}

// FormatDocumentNumber renders {PREFIX}{YYYYMMDD}{seq:04d}. The sequence is
// zero-padded to four digits and widens naturally past 9999; uniqueness is
// guaranteed by the counter, not the width.
func FormatDocumentNumber(prefix DocumentPrefix, t time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", prefix, SequenceDate(t), seq)
}
