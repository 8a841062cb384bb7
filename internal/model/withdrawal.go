package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

type WithdrawalMethod string

const (
	WithdrawalMethodPaypal WithdrawalMethod = "paypal"
	WithdrawalMethodUPI    WithdrawalMethod = "upi"
	WithdrawalMethodBank   WithdrawalMethod = "bank"
)

func (m WithdrawalMethod) Valid() bool {
	switch m {
	case WithdrawalMethodPaypal, WithdrawalMethodUPI, WithdrawalMethodBank:
		return true
	}
	return false
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
)

func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyINR
}

// Withdrawal is a redemption request. Monetary amounts are frozen at creation
// as decimal text.
type Withdrawal struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	UserID       uint64           `gorm:"column:user_id;index;not null"`
	AmountPoints int64            `gorm:"column:amount_points;not null"`
	AmountUSD    string           `gorm:"column:amount_usd;size:32;not null"`
	AmountINR    string           `gorm:"column:amount_inr;size:32;not null"`
	Currency     Currency         `gorm:"column:currency;size:8;not null;default:USD"`
	Method       WithdrawalMethod `gorm:"column:method;size:16;not null"`
	Details      string           `gorm:"column:details;type:text;not null"`
	Status       WithdrawalStatus `gorm:"column:status;size:16;not null;default:pending"`
	CreatedAt    time.Time        `gorm:"column:created_at;index"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
