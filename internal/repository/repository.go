package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page bounds a list query.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.PerPage
}

func paginate(tx *gorm.DB, page Page) *gorm.DB {
	page = page.normalize()
	return tx.Offset(page.offset()).Limit(page.PerPage)
}

// lockForUpdate requests a row lock on dialects that support it. SQLite,
// used by the test suite, serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
