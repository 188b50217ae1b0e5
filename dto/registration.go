package dto

type RegistrationMember struct {
	Name   string   `json:"name" binding:"required"`
	Email  string   `json:"email" binding:"required"`
	Phone  string   `json:"phone" binding:"required"`
	Events []string `json:"events" binding:"required"`
}

type RegistrationStaff struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type RegistrationRequest struct {
	CollegeName   string               `json:"college_name" binding:"required"`
	TeamLead      RegistrationMember   `json:"team_lead" binding:"required"`
	Participants  []RegistrationMember `json:"participants"`
	Staff         *RegistrationStaff   `json:"staff"`
	TransactionID string               `json:"transaction_id" binding:"required"`
}
