package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. It enforces
// the same uniqueness rules the real schema does (case-insensitive email,
// one enrollment per student and course). WithTransaction serializes
// callers, which is the behavior the services rely on for the capacity
// check-then-insert.
type mockRepository struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users       map[uint]models.User
	students    map[uint]models.Student
	lecturers   map[uint]models.Lecturer
	courses     map[uint]models.Course
	enrollments map[uint]models.Enrollment
	auditLogs   []models.AuditLog

	nextUserID       uint
	nextCourseID     uint
	nextEnrollmentID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[uint]models.User),
		students:    make(map[uint]models.Student),
		lecturers:   make(map[uint]models.Lecturer),
		courses:     make(map[uint]models.Course),
		enrollments: make(map[uint]models.Enrollment),
	}
}

func (m *mockRepository) User() repositories.UserRepository             { return &mockUserRepo{m} }
func (m *mockRepository) Student() repositories.StudentRepository       { return &mockStudentRepo{m} }
func (m *mockRepository) Lecturer() repositories.LecturerRepository     { return &mockLecturerRepo{m} }
func (m *mockRepository) Course() repositories.CourseRepository         { return &mockCourseRepo{m} }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository { return &mockEnrollmentRepo{m} }
func (m *mockRepository) AuditLog() repositories.AuditLogRepository     { return &mockAuditLogRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// seedStudent inserts a user plus student profile directly.
func (m *mockRepository) seedStudent(id uint, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.users[id] = models.User{ID: id, FirstName: "Test", LastName: "Student", Email: email, Role: models.RoleStudent, CreatedAt: now, UpdatedAt: now}
	m.students[id] = models.Student{ID: id, EnrollmentDate: &now}
	if id >= m.nextUserID {
		m.nextUserID = id
	}
}

func (m *mockRepository) seedCourse(id uint, code string, capacity *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id] = models.Course{ID: id, Code: code, Capacity: capacity}
	if id >= m.nextCourseID {
		m.nextCourseID = id
	}
}

func (m *mockRepository) seedEnrollment(studentID, courseID uint, status models.EnrollmentStatus, enrolledAt time.Time) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEnrollmentID++
	id := m.nextEnrollmentID
	m.enrollments[id] = models.Enrollment{
		ID:          id,
		StudentID:   studentID,
		CourseID:    courseID,
		Status:      status,
		EnrolledAt:  enrolledAt,
		LastUpdated: enrolledAt,
	}
	return id
}

// ===== USER =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	// Byte-wise comparison, like the unique index on users.email. Callers
	// are expected to normalize case before persisting.
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	r.m.nextUserID++
	user.ID = r.m.nextUserID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.m.users[user.ID] = *user
	return nil
}

func (r *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := u
	return &copy, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			copy := u
			return &copy, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (r *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, u := range r.m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		copy := u
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, u := range r.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ===== STUDENT / LECTURER =====

type mockStudentRepo struct{ m *mockRepository }

func (r *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.students[student.ID]; ok {
		return repositories.ErrDuplicate
	}
	r.m.students[student.ID] = *student
	return nil
}

func (r *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.students[student.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.students[student.ID] = *student
	return nil
}

func (r *mockStudentRepo) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.students[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := s
	return &copy, nil
}

func (r *mockStudentRepo) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			if s, ok := r.m.students[id]; ok {
				copy := s
				return &copy, nil
			}
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockStudentRepo) List(ctx context.Context, limit, offset int) ([]*models.Student, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Student
	for _, s := range r.m.students {
		copy := s
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

type mockLecturerRepo struct{ m *mockRepository }

func (r *mockLecturerRepo) Create(ctx context.Context, lecturer *models.Lecturer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.lecturers[lecturer.ID] = *lecturer
	return nil
}

func (r *mockLecturerRepo) GetByID(ctx context.Context, id uint) (*models.Lecturer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.lecturers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := l
	return &copy, nil
}

func (r *mockLecturerRepo) List(ctx context.Context, limit, offset int) ([]*models.Lecturer, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Lecturer
	for _, l := range r.m.lecturers {
		copy := l
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== COURSE =====

type mockCourseRepo struct{ m *mockRepository }

func (r *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.courses {
		if strings.EqualFold(c.Code, course.Code) {
			return repositories.ErrDuplicate
		}
	}
	r.m.nextCourseID++
	course.ID = r.m.nextCourseID
	r.m.courses[course.ID] = *course
	return nil
}

func (r *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.courses[course.ID] = *course
	return nil
}

func (r *mockCourseRepo) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.courses, id)
	return nil
}

func (r *mockCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := c
	return &copy, nil
}

func (r *mockCourseRepo) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.courses {
		if strings.EqualFold(c.Code, code) {
			copy := c
			return &copy, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	if err == nil {
		return true, nil
	}
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (r *mockCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Course
	for _, c := range r.m.courses {
		if filters.LecturerID != nil && (c.LecturerID == nil || *c.LecturerID != *filters.LecturerID) {
			continue
		}
		copy := c
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockCourseRepo) LockByID(ctx context.Context, id uint) (*models.Course, error) {
	return r.GetByID(ctx, id)
}

// ===== ENROLLMENT =====

type mockEnrollmentRepo struct{ m *mockRepository }

func (r *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return repositories.ErrDuplicate
		}
	}
	r.m.nextEnrollmentID++
	enrollment.ID = r.m.nextEnrollmentID
	r.m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r *mockEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.enrollments[enrollment.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r *mockEnrollmentRepo) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.enrollments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := e
	return &copy, nil
}

func (r *mockEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			copy := e
			return &copy, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockEnrollmentRepo) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID uint) (bool, error) {
	_, err := r.GetByStudentAndCourse(ctx, studentID, courseID)
	if err == nil {
		return true, nil
	}
	if repositories.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (r *mockEnrollmentRepo) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, e := range r.m.enrollments {
		if e.CourseID == courseID && e.Status == models.EnrollmentActive {
			n++
		}
	}
	return n, nil
}

func (r *mockEnrollmentRepo) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range r.m.enrollments {
		if filters.StudentID != nil && e.StudentID != *filters.StudentID {
			continue
		}
		if filters.CourseID != nil && e.CourseID != *filters.CourseID {
			continue
		}
		if filters.Status != nil && e.Status != *filters.Status {
			continue
		}
		if filters.DateFrom != nil && e.EnrolledAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && e.EnrolledAt.After(*filters.DateTo) {
			continue
		}
		copy := e
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			out = nil
		} else {
			out = out[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *mockEnrollmentRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range r.m.enrollments {
		if e.EnrolledAt.Before(from) || e.EnrolledAt.After(to) {
			continue
		}
		copy := e
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out, nil
}

func (r *mockEnrollmentRepo) Stats(ctx context.Context) (*repositories.EnrollmentStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := &repositories.EnrollmentStats{}
	for _, e := range r.m.enrollments {
		stats.Total++
		switch e.Status {
		case models.EnrollmentActive:
			stats.Active++
		case models.EnrollmentCompleted:
			stats.Completed++
		case models.EnrollmentDropped:
			stats.Dropped++
		}
	}
	return stats, nil
}

// ===== AUDIT LOG =====

type mockAuditLogRepo struct{ m *mockRepository }

func (r *mockAuditLogRepo) Append(ctx context.Context, log *models.AuditLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	log.ID = uint(len(r.m.auditLogs) + 1)
	r.m.auditLogs = append(r.m.auditLogs, *log)
	return nil
}

func (r *mockAuditLogRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.AuditLog
	for i := range r.m.auditLogs {
		if r.m.auditLogs[i].UserID == userID {
			copy := r.m.auditLogs[i]
			out = append(out, &copy)
		}
	}
	return out, int64(len(out)), nil
}
