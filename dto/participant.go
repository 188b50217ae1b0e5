package dto

type AddParticipantRequest struct {
	Name   string   `json:"name" binding:"required"`
	Email  string   `json:"email" binding:"required"`
	Phone  string   `json:"phone" binding:"required"`
	Events []string `json:"events" binding:"required"`
}

type FeedbackRequest struct {
	Responses map[string]int `json:"responses" binding:"required"`
}
