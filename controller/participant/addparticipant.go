package participant

import (
	"net/http"
	"strings"

	"integraportal/dto"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

const maxEventsPerPerson = 4

// AddParticipant lets a verified team add one more member from the
// dashboard. The team document, the participants collection and the food
// token count all move together in one batch.
func AddParticipant(c *gin.Context, firestoreClient *firestore.Client) {
	teamID, ok := teamIDFromClaims(c)
	if !ok {
		return
	}

	var req dto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all required fields"})
		return
	}

	if !services.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}
	if !services.ValidatePhone(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}
	if len(req.Events) == 0 || len(req.Events) > maxEventsPerPerson {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select between 1 and 4 events"})
		return
	}
	for _, event := range req.Events {
		if !validEvent(event) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event: " + event})
			return
		}
	}

	team, err := services.GetTeam(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}
	if team.ParticipantCount >= 15 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 15 participants allowed (including team leader)"})
		return
	}

	for _, field := range []struct{ name, value string }{
		{"email", strings.ToLower(strings.TrimSpace(req.Email))},
		{"phone", strings.TrimSpace(req.Phone)},
	} {
		exists, err := services.ContactExists(c, firestoreClient, field.name, field.value)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking for duplicate email / mobile. Please try again."})
			return
		}
		if exists {
			if field.name == "email" {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already exist"})
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": "Mobile number already exist"})
			}
			return
		}
	}

	member := model.TeamMember{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Events: req.Events,
	}

	newEvents := append([]string{}, team.Events...)
	for _, event := range req.Events {
		if !containsString(newEvents, event) {
			newEvents = append(newEvents, event)
		}
	}

	tokenDoc, ok := teamToken(c, firestoreClient, teamID)
	if !ok {
		return
	}

	batch := firestoreClient.Batch()
	batch.Update(firestoreClient.Collection("teams").Doc(teamID), []firestore.Update{
		{Path: "participants", Value: firestore.ArrayUnion(member)},
		{Path: "participantCount", Value: firestore.Increment(1)},
		{Path: "events", Value: newEvents},
	})
	batch.Set(firestoreClient.Collection("participants").NewDoc(), model.Participant{
		TeamID:     teamID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Events:     req.Events,
		IsTeamLead: false,
		LotNumber:  map[string]int{},
	})
	batch.Update(tokenDoc.Ref, []firestore.Update{
		{Path: "tokenCount", Value: firestore.Increment(1)},
	})
	for _, event := range req.Events {
		if !containsString(team.Events, event) {
			batch.Set(firestoreClient.Collection("events").Doc(event), map[string]interface{}{
				"eventName": event,
				"teamCount": firestore.Increment(1),
			}, firestore.MergeAll)
		}
	}

	if _, err := batch.Commit(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add participant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Participant added",
		"participantCount": team.ParticipantCount + 1,
	})
}

func validEvent(name string) bool {
	return containsString(model.EventsList, name)
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
