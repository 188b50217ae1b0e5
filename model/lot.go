package model

import (
	"time"
)

type Lot struct {
	EventName        string     `firestore:"eventName" json:"eventName"`
	TeamID           string     `firestore:"teamId" json:"teamId"`
	CollegeName      string     `firestore:"collegeName" json:"collegeName"`
	LotNumber        int        `firestore:"lotNumber" json:"lotNumber"`
	ParticipantName  string     `firestore:"participantName" json:"participantName"`
	ParticipantPhone string     `firestore:"participantPhone" json:"participantPhone"`
	AssignedAt       time.Time  `firestore:"assignedAt,serverTimestamp" json:"assignedAt"`
	Attendance       bool       `firestore:"attendance" json:"attendance"`
	AttendanceAt     *time.Time `firestore:"attendanceAt" json:"attendanceAt,omitempty"`
}
