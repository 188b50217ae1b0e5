package model

import (
	"time"
)

// Credential documents are keyed by registration id.
type Credential struct {
	Email        string    `firestore:"email" json:"email"`
	Username     string    `firestore:"username" json:"username"`
	PasswordHash string    `firestore:"passwordHash" json:"-"`
	RegID        string    `firestore:"regId" json:"regId"`
	College      string    `firestore:"college" json:"college"`
	CreatedAt    time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// Operator is a staff login document (admins, coordinators, foodCoordinators
// collections). EventName is set for event coordinators only.
type Operator struct {
	Email        string `firestore:"email" json:"email"`
	Name         string `firestore:"name" json:"name"`
	PasswordHash string `firestore:"passwordHash" json:"-"`
	EventName    string `firestore:"eventName" json:"eventName,omitempty"`
}
