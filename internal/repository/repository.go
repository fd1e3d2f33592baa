// Package repository provides gorm data access for the catalog.
package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aidin1998/pricecatalog/internal/database"
)

const (
	lockUpdate = "UPDATE"
	lockShare  = "SHARE"
)

// lock adds a row lock clause. sqlite has no row locks; writers are
// serialised by its single connection instead.
func lock(db *gorm.DB, strength string) *gorm.DB {
	if database.IsSQLite(db) {
		return db
	}
	return db.Clauses(clause.Locking{Strength: strength})
}
