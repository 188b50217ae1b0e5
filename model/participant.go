package model

type Participant struct {
	TeamID     string         `firestore:"teamId" json:"teamId"`
	Name       string         `firestore:"name" json:"name"`
	Email      string         `firestore:"email" json:"email"`
	Phone      string         `firestore:"phone" json:"phone"`
	Events     []string       `firestore:"events" json:"events"`
	IsTeamLead bool           `firestore:"isTeamLead" json:"isTeamLead"`
	LotNumber  map[string]int `firestore:"lotNumber" json:"lotNumber"`
}
