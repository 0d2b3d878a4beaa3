package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:20" validate:"required,course_code"`
	Title       *string `json:"title" gorm:"size:100" validate:"omitempty,max=100"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Credits     *int    `json:"credits" validate:"omitempty,min=1,max=30"`
	LecturerID  *uint   `json:"lecturer_id" gorm:"index"`

	StartDate *time.Time `json:"start_date" gorm:"index"`
	EndDate   *time.Time `json:"end_date"`

	// Capacity is the maximum number of simultaneously Active enrollments.
	// Nil means unbounded.
	Capacity *int `json:"capacity" validate:"omitempty,min=1"`

	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Lecturer *Lecturer `json:"lecturer,omitempty" gorm:"foreignKey:LecturerID"`
}

func (Course) TableName() string {
	return "courses"
}
