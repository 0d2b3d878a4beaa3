package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	return translateError(s.db.WithContext(ctx).Create(student).Error)
}

func (s *StudentPostgreSQL) Update(ctx context.Context, student *models.Student) error {
	return translateError(s.db.WithContext(ctx).Save(student).Error)
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).Preload("User").First(&student, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = students.id").
		Where("lower(users.email) = lower(?)", email).
		First(&student).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Student{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query.Order("id asc"), limit, offset)
	if err := query.Preload("User").Find(&students).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return students, total, nil
}

type LecturerPostgreSQL struct {
	db *gorm.DB
}

func NewLecturerPostgreSQL(db *gorm.DB) repositories.LecturerRepository {
	return &LecturerPostgreSQL{db: db}
}

func (l *LecturerPostgreSQL) Create(ctx context.Context, lecturer *models.Lecturer) error {
	return translateError(l.db.WithContext(ctx).Create(lecturer).Error)
}

func (l *LecturerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lecturer, error) {
	var lecturer models.Lecturer
	err := l.db.WithContext(ctx).Preload("User").First(&lecturer, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &lecturer, nil
}

func (l *LecturerPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.Lecturer, int64, error) {
	var lecturers []*models.Lecturer
	var total int64

	query := l.db.WithContext(ctx).Model(&models.Lecturer{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query.Order("id asc"), limit, offset)
	if err := query.Preload("User").Find(&lecturers).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return lecturers, total, nil
}
