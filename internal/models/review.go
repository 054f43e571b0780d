package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint  `gorm:"index;not null" json:"doctorId"`
	UserID   uint  `gorm:"index;not null" json:"userId"`
	Author   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"author,omitempty"`

	Rating int    `gorm:"not null" json:"rating"`
	Body   string `gorm:"column:review;type:text" json:"review"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
