package dto

type SettingsRequest struct {
	PaymentQRURL      string            `json:"payment_qr_url"`
	Venue             string            `json:"venue"`
	Instructions      string            `json:"instructions"`
	EventTimings      map[string]string `json:"event_timings"`
	FoodDeleteEnabled *bool             `json:"food_delete_enabled"`
}

type FeedbackSettingsRequest struct {
	FeedbackEnabled   bool     `json:"feedback_enabled"`
	FeedbackQuestions []string `json:"feedback_questions" binding:"required"`
}
