package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// date is YYYY-MM-DD and time is HH:MM, both in the clinic's local time
	Date string `gorm:"size:10;not null;uniqueIndex:idx_appointments_doctor_slot,priority:2" json:"date"`
	Time string `gorm:"size:5;not null;uniqueIndex:idx_appointments_doctor_slot,priority:3" json:"time"`

	DoctorID uint  `gorm:"not null;index;uniqueIndex:idx_appointments_doctor_slot,priority:1,where:status <> 'cancelled'" json:"doctorId"`
	Doctor   *User `gorm:"constraint:OnDelete:CASCADE;" json:"doctor,omitempty"`

	PatientID uint  `gorm:"not null;index" json:"patientId"`
	Patient   *User `gorm:"constraint:OnDelete:CASCADE;" json:"patient,omitempty"`

	Contact string `gorm:"size:50;not null" json:"contact"`
	Status  string `gorm:"size:20;default:'scheduled'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
