package model

type Event struct {
	EventName string `firestore:"eventName" json:"eventName"`
	TeamCount int    `firestore:"teamCount" json:"teamCount"`
	Rules     string `firestore:"rules" json:"rules"`
	Venue     string `firestore:"venue" json:"venue"`
	Timing    string `firestore:"timing" json:"timing"`
}

// EventsList is the fixed roster of fest events. Digital Don is the overall
// event and is excluded from registration picks but still gets lots.
var EventsList = []string{
	"Project Expo",
	"HackBlitz",
	"BrandCraft",
	"Web Solutions",
	"Digital Link",
	"Software Showcase",
	"BrainBytes",
	"ReelRush",
}

var LotEventsList = append(append([]string{}, EventsList...), "Digital Don")
