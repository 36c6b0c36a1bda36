package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edupulse/dropout-risk-api/internal/models"
)

// ErrStudentNotFound is returned when no student matches the roll number.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepository provides access to stored student records.
type StudentRepository interface {
	GetByRollNo(ctx context.Context, rollNo string) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	Search(ctx context.Context, query string) ([]models.Student, error)
	Upsert(ctx context.Context, student models.Student) error
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByRollNo(ctx context.Context, rollNo string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("roll_no = ?", rollNo).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Student{}, ErrStudentNotFound
	}
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Order("roll_no").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Search(ctx context.Context, query string) ([]models.Student, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(roll_no) LIKE ?", pattern, pattern).
		Order("roll_no").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Upsert(ctx context.Context, student models.Student) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "roll_no"}},
			UpdateAll: true,
		}).
		Create(&student).Error
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
