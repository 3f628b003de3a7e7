package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByUserID filters notebooks and pages by owner.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// OldestFirst orders by creation time.
func OldestFirst() Specification {
	return OrderBy{Field: "created_at"}
}
