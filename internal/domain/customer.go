package domain

import "time"

// Customer is only read here; orders reference it.
type Customer struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	FullName  string    `json:"fullName" gorm:"size:255;not null"`
	Phone     string    `json:"phone" gorm:"size:50"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
