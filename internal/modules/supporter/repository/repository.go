package repository

import (
	"context"

	"elimufund.com/backend/internal/entity"
	"gorm.io/gorm"
)

type SupporterRepository interface {
	Create(ctx context.Context, supporter *entity.Supporter) error
	Delete(ctx context.Context, userID, profileID uint) (bool, error)
	Exists(ctx context.Context, userID, profileID uint) (bool, error)
	ListFollowed(ctx context.Context, userID uint) ([]entity.StudentProfile, error)
	ListSupporters(ctx context.Context, profileID uint) ([]entity.User, error)
	CountByProfiles(ctx context.Context, profileIDs []uint) (map[uint]int64, error)
	FollowedAmong(ctx context.Context, userID uint, profileIDs []uint) (map[uint]bool, error)
}

type supporterRepository struct {
	db *gorm.DB
}

func NewSupporterRepository(db *gorm.DB) SupporterRepository {
	return &supporterRepository{db: db}
}

// Create relies on the composite primary key to reject a second row for the same pair.
func (r *supporterRepository) Create(ctx context.Context, supporter *entity.Supporter) error {
	return r.db.WithContext(ctx).Create(supporter).Error
}

func (r *supporterRepository) Delete(ctx context.Context, userID, profileID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND student_profile_id = ?", userID, profileID).
		Delete(&entity.Supporter{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *supporterRepository) Exists(ctx context.Context, userID, profileID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Supporter{}).
		Where("user_id = ? AND student_profile_id = ?", userID, profileID).
		Count(&count).Error
	return count > 0, err
}

func (r *supporterRepository) ListFollowed(ctx context.Context, userID uint) ([]entity.StudentProfile, error) {
	profiles := make([]entity.StudentProfile, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN user_student_supporters uss ON uss.student_profile_id = student_profiles.id").
		Where("uss.user_id = ?", userID).
		Order("uss.followed_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *supporterRepository) ListSupporters(ctx context.Context, profileID uint) ([]entity.User, error) {
	users := make([]entity.User, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN user_student_supporters uss ON uss.user_id = users.id").
		Where("uss.student_profile_id = ?", profileID).
		Order("uss.followed_at ASC").
		Find(&users).Error
	return users, err
}

func (r *supporterRepository) CountByProfiles(ctx context.Context, profileIDs []uint) (map[uint]int64, error) {
	type result struct {
		StudentProfileID uint
		Count            int64
	}

	var rows []result
	err := r.db.WithContext(ctx).
		Model(&entity.Supporter{}).
		Select("student_profile_id, COUNT(*) AS count").
		Where("student_profile_id IN ?", profileIDs).
		Group("student_profile_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.StudentProfileID] = row.Count
	}
	return counts, nil
}

func (r *supporterRepository) FollowedAmong(ctx context.Context, userID uint, profileIDs []uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Supporter{}).
		Where("user_id = ? AND student_profile_id IN ?", userID, profileIDs).
		Pluck("student_profile_id", &ids).Error
	if err != nil {
		return nil, err
	}

	followed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
