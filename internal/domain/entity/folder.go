package entity

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	CreatedBy *string   `json:"created_by" firestore:"createdBy"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
