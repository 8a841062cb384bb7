package model

import "time"

// Notification is an in-app message about one of the user's withdrawals.
type Notification struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	UserID       uint64     `gorm:"column:user_id;index;not null"`
	Type         string     `gorm:"column:type;size:64;not null"`
	Title        string     `gorm:"column:title;size:255"`
	Body         string     `gorm:"column:body;type:text"`
	WithdrawalID *uint64    `gorm:"column:withdrawal_id;index"`
	AmountPoints int64      `gorm:"column:amount_points;not null;default:0"`
	Amount       string     `gorm:"column:amount;size:32"`
	Currency     Currency   `gorm:"column:currency;size:8"`
	ReadAt       *time.Time `gorm:"column:read_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
