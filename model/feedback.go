package model

import (
	"time"
)

type Feedback struct {
	Email       string         `firestore:"email" json:"email"`
	CollegeName string         `firestore:"collegeName" json:"collegeName"`
	Responses   map[string]int `firestore:"responses" json:"responses"`
	SubmittedAt time.Time      `firestore:"submittedAt,serverTimestamp" json:"submittedAt"`
}
