package specification

import "gorm.io/gorm"

// Specification is a composable filter that repositories chain onto a
// GORM query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
