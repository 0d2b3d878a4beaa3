package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "Active"
	EnrollmentDropped   EnrollmentStatus = "Dropped"
	EnrollmentCompleted EnrollmentStatus = "Completed"
)

// Valid reports whether the status is one of the known enrollment states.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentDropped, EnrollmentCompleted:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further drop transition.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentDropped || s == EnrollmentCompleted
}

const (
	// Grade bounds for a completed or in-progress enrollment.
	GradeMin = 0.0
	GradeMax = 10.0
)

type Enrollment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;index;index:idx_enrollment_pair,unique"`
	CourseID  uint `json:"course_id" gorm:"not null;index;index:idx_enrollment_pair,unique"`

	EnrolledAt  time.Time        `json:"enrolled_at" gorm:"not null;index"`
	Status      EnrollmentStatus `json:"status" gorm:"size:20;index;default:Active"`
	Grade       *float64         `json:"grade" gorm:"type:numeric(3,1)"`
	LastUpdated time.Time        `json:"last_updated" gorm:"not null"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
