package entity

import (
	"time"
)

// Supporter is a donor following a student profile. The composite primary key
// keeps at most one row per (user, profile) pair.
type Supporter struct {
	UserID           uint            `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User             *User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	StudentProfileID uint            `gorm:"primaryKey;autoIncrement:false;index" json:"student_profile_id"`
	StudentProfile   *StudentProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FollowedAt       time.Time       `gorm:"autoCreateTime" json:"followed_at"`
}

func (s *Supporter) TableName() string {
	return "user_student_supporters"
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&StudentProfile{},
		&Donation{},
		&Supporter{},
	}
}
