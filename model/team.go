package model

import (
	"time"
)

type Team struct {
	CollegeName      string           `firestore:"collegeName" json:"collegeName"`
	TeamLead         string           `firestore:"teamLead" json:"teamLead"`
	Email            string           `firestore:"email" json:"email"`
	Phone            string           `firestore:"phone" json:"phone"`
	Participants     []TeamMember     `firestore:"participants" json:"participants"`
	ParticipantCount int              `firestore:"participantCount" json:"participantCount"`
	StaffCount       int              `firestore:"staffCount" json:"staffCount"`
	StaffDetails     *StaffDetails    `firestore:"staffDetails" json:"staffDetails,omitempty"`
	Events           []string         `firestore:"events" json:"events"`
	Amount           int              `firestore:"amount" json:"amount"`
	PaymentStatus    string           `firestore:"paymentStatus" json:"paymentStatus"`
	TransactionID    string           `firestore:"transactionId" json:"transactionId"`
	RegID            string           `firestore:"regId" json:"regId"`
	LotNumbers       map[string][]int `firestore:"lotNumbers" json:"lotNumbers"`
	CreatedAt        time.Time        `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// TeamMember is the denormalized participant entry embedded in the team
// document. The first member is always the team leader.
type TeamMember struct {
	Name   string   `firestore:"name" json:"name"`
	Email  string   `firestore:"email" json:"email"`
	Phone  string   `firestore:"phone" json:"phone"`
	Events []string `firestore:"events" json:"events"`
}

type StaffDetails struct {
	Name  string `firestore:"name" json:"name"`
	Phone string `firestore:"phone" json:"phone"`
	Email string `firestore:"email" json:"email"`
}

// Payment status values used on teams and payments documents.
const (
	PaymentPending  = "pending"
	PaymentVerified = "verified"
	PaymentRejected = "rejected"
)
