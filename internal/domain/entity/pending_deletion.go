package entity

import (
	"time"
)

// PendingDeletion is a storage object that could not be removed when it was
// superseded and is retried by the cleanup sweep.
type PendingDeletion struct {
	ID          string    `json:"id" firestore:"-"`
	StoragePath string    `json:"storage_path" firestore:"storagePath"`
	Reason      string    `json:"reason" firestore:"reason"`
	Attempts    int       `json:"attempts" firestore:"attempts"`
	LastError   string    `json:"last_error,omitempty" firestore:"lastError,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}
