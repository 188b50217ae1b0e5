package dto

type AttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}
