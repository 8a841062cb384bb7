package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity and balance holder. Points never go below zero.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;size:64;uniqueIndex;not null"`
	Password     string    `gorm:"column:password;size:255;not null"`
	PhoneNumber  string    `gorm:"column:phone_number;size:32;uniqueIndex;not null"`
	DeviceID     string    `gorm:"column:device_id;size:128;index;not null"`
	FirebaseUID  *string   `gorm:"column:firebase_uid;size:128;uniqueIndex"`
	Role         Role      `gorm:"column:role;size:16;not null;default:user"`
	Points       int64     `gorm:"column:points;not null;default:0"`
	IsBlocked    bool      `gorm:"column:is_blocked;not null;default:false"`
	ReferralCode string    `gorm:"column:referral_code;size:16;uniqueIndex;not null"`
	ReferredBy   *string   `gorm:"column:referred_by;size:16"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
