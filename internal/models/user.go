package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// ValidRoles lists every role a user row may carry.
var ValidRoles = []UserRole{RoleStudent, RoleTeacher, RoleAdmin}

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	Name      string   `json:"name" gorm:"not null;size:255"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string   `json:"-" gorm:"not null;size:255"`
	Role      UserRole `json:"role" gorm:"type:varchar(20);not null;default:student;index"`
	AvatarURL *string  `json:"avatar_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Courses     []Course     `json:"cursos,omitempty" gorm:"foreignKey:InstructorID"`
	Enrollments []Enrollment `json:"inscripciones,omitempty" gorm:"foreignKey:UserID"`
	BankDetails *BankDetails `json:"datos_bancarios,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// Roles keeps the list-shaped role contract of the public API.
func (u User) Roles() []string {
	return []string{string(u.Role)}
}

// PublicProfile keeps what any visitor may see of a user.
func (u User) PublicProfile() *User {
	return &User{ID: u.ID, Name: u.Name, Role: u.Role, AvatarURL: u.AvatarURL}
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// BankDetails holds the payout account of a teacher.
type BankDetails struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"usuario_id" gorm:"uniqueIndex;not null"`
	Bank       string    `json:"banco" gorm:"size:100;not null"`
	CLABE      string    `json:"clabe" gorm:"column:clabe;size:18;not null"`
	HolderName string    `json:"titular" gorm:"size:255;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (BankDetails) TableName() string {
	return "datos_bancarios"
}
