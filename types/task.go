package types

import "time"

// Task is a unit of work a user plans to spend Pomodoro intervals on.
// Every task belongs to exactly one user.
type Task struct {
	// ID is the unique identifier of the task (UUID string).
	ID string `json:"id" db:"id" bson:"_id"`

	// UserID identifies the owner of the task.
	UserID string `json:"userId" db:"user_id" bson:"userId"`

	// Name is the trimmed, non-empty task title.
	Name string `json:"name" db:"name" bson:"name"`

	// TargetCount is the number of Pomodoro intervals planned for the task.
	TargetCount int `json:"num" db:"target_count" bson:"num"`

	// CompletedCount is the number of intervals finished so far.
	// It is the only field that changes after creation.
	CompletedCount int `json:"finish" db:"completed_count" bson:"finish"`

	// CreatedAt is the creation timestamp. Task lists are sorted by it ascending.
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}
