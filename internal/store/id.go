package store

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string. Ids issued by one process sort
// in creation order, which breaks ties between rows sharing a timestamp.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
