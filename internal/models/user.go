package models

import "time"

const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName    string `gorm:"size:100;not null" json:"first_name"`
	LastName     string `gorm:"size:100;not null" json:"last_name"`
	Email        string `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;default:'user';index" json:"role"`

	MedicalLicense string `gorm:"size:100" json:"medicalLicense,omitempty"`
	Specialization string `gorm:"size:100" json:"specialization,omitempty"`
	ImageURL       string `gorm:"size:500" json:"image_url"`

	IsAccountVerified bool `gorm:"default:false" json:"isAccountVerified"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}
