package model

import (
	"time"
)

type Payment struct {
	TeamID        string     `firestore:"teamId" json:"teamId"`
	Amount        int        `firestore:"amount" json:"amount"`
	TransactionID string     `firestore:"transactionId" json:"transactionId"`
	Status        string     `firestore:"status" json:"status"`
	CreatedAt     time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	VerifiedAt    *time.Time `firestore:"verifiedAt" json:"verifiedAt,omitempty"`
}
