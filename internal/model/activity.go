package model

import "time"

type ActivityType string

const (
	ActivityDailyLogin ActivityType = "daily_login"
	ActivityAdWatch    ActivityType = "ad_watch"
	ActivityGameTap    ActivityType = "game_tap"
	ActivityGameTrivia ActivityType = "game_trivia"
	ActivityGameMemory ActivityType = "game_memory"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityDailyLogin, ActivityAdWatch, ActivityGameTap, ActivityGameTrivia, ActivityGameMemory:
		return true
	}
	return false
}

func (t ActivityType) IsGame() bool {
	return t == ActivityGameTap || t == ActivityGameTrivia || t == ActivityGameMemory
}

// Activity is an append-only record of one earn-event. Rows are never updated.
type Activity struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement"`
	UserID       uint64       `gorm:"column:user_id;index;not null"`
	Type         ActivityType `gorm:"column:type;size:32;not null"`
	PointsEarned int64        `gorm:"column:points_earned;not null"`
	CreatedAt    time.Time    `gorm:"column:created_at;index"`
}

func (Activity) TableName() string {
	return "activities"
}
