package model

import (
	"time"
)

// AdminSettings is the single adminSettings/main document. FoodDeleteEnabled
// is a pointer because a missing field means "allowed" for dashboards that
// predate the toggle.
type AdminSettings struct {
	PaymentQRURL      string            `firestore:"paymentQRUrl" json:"paymentQRUrl"`
	Venue             string            `firestore:"venue" json:"venue"`
	Instructions      string            `firestore:"instructions" json:"instructions"`
	EventTimings      map[string]string `firestore:"eventTimings" json:"eventTimings"`
	FoodDeleteEnabled *bool             `firestore:"foodDeleteEnabled" json:"foodDeleteEnabled,omitempty"`
	FeedbackEnabled   bool              `firestore:"feedbackEnabled" json:"feedbackEnabled"`
	FeedbackQuestions []string          `firestore:"feedbackQuestions" json:"feedbackQuestions"`
	UpdatedAt         time.Time         `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// FoodDeleteAllowed applies the missing-field default.
func (s *AdminSettings) FoodDeleteAllowed() bool {
	return s == nil || s.FoodDeleteEnabled == nil || *s.FoodDeleteEnabled
}
