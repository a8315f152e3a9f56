package types

import "time"

// Record is an append-only fact: one completed Pomodoro interval.
type Record struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	UserID    string    `json:"userId" db:"user_id" bson:"userId"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}

// DailyCount is one day of the weekly report.
type DailyCount struct {
	// Date is the calendar day formatted as YYYY-MM-DD.
	Date string `json:"date"`

	// RecordCount is the number of records created on Date.
	RecordCount int `json:"recordCount"`
}
