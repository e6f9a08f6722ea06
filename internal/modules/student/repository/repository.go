package repository

import (
	"context"

	"elimufund.com/backend/internal/entity"
	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(ctx context.Context, profile *entity.StudentProfile) error
	Update(ctx context.Context, profile *entity.StudentProfile) error
	UpdateImage(ctx context.Context, id uint, imageURL string) error
	SetVerified(ctx context.Context, id uint, verified bool) error
	FindByID(ctx context.Context, id uint) (*entity.StudentProfile, error)
	FindByUserID(ctx context.Context, userID uint) (*entity.StudentProfile, error)
	List(ctx context.Context, filter ListFilter) ([]entity.StudentProfile, error)
	CountByVerification(ctx context.Context) (total, verified int64, err error)
}

type ListFilter struct {
	// Verified restricts the result to one verification state when set.
	Verified *bool
	Random   bool
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update writes only the student-editable columns, leaving the ledger and
// verification state to their own code paths.
func (r *studentRepository) Update(ctx context.Context, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).
		Model(profile).
		Select("full_name", "academic_level", "school_name", "fee_amount", "story", "profile_image").
		Updates(profile).Error
}

func (r *studentRepository) UpdateImage(ctx context.Context, id uint, imageURL string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.StudentProfile{}).
		Where("id = ?", id).
		UpdateColumn("profile_image", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	res := r.db.WithContext(ctx).
		Model(&entity.StudentProfile{}).
		Where("id = ?", id).
		UpdateColumn("is_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) FindByUserID(ctx context.Context, userID uint) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) List(ctx context.Context, filter ListFilter) ([]entity.StudentProfile, error) {
	query := r.db.WithContext(ctx).Model(&entity.StudentProfile{})
	if filter.Verified != nil {
		query = query.Where("is_verified = ?", *filter.Verified)
	}
	if filter.Random {
		query = query.Order("RANDOM()")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	profiles := make([]entity.StudentProfile, 0)
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *studentRepository) CountByVerification(ctx context.Context) (int64, int64, error) {
	var total, verified int64
	if err := r.db.WithContext(ctx).Model(&entity.StudentProfile{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&entity.StudentProfile{}).Where("is_verified = ?", true).Count(&verified).Error; err != nil {
		return 0, 0, err
	}
	return total, verified, nil
}
