package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent  UserRole = "Student"
	RoleLecturer UserRole = "Lecturer"
	RoleAdmin    UserRole = "Admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	FirstName string   `json:"first_name" gorm:"size:50"`
	LastName  string   `json:"last_name" gorm:"size:50"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:100"`
	Password  string   `json:"-" gorm:"column:password_hash;size:255"`
	Role      UserRole `json:"role" gorm:"size:20;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// FullName is the display name used in responses and exports.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Student is the per-user student profile. The primary key is shared with
// the owning user row.
type Student struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	PhoneNumber    *string    `json:"phone_number" gorm:"size:20"`
	Address        *string    `json:"address" gorm:"size:255"`
	EnrollmentDate *time.Time `json:"enrollment_date" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:ID"`
}

func (Student) TableName() string {
	return "students"
}

type Lecturer struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Specialization *string    `json:"specialization" gorm:"size:100;index"`
	HireDate       *time.Time `json:"hire_date"`
	PhoneNumber    *string    `json:"phone_number" gorm:"size:20"`

	User User `json:"user" gorm:"foreignKey:ID"`
}

func (Lecturer) TableName() string {
	return "lecturers"
}
