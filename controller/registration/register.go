package registration

import (
	"fmt"
	"net/http"
	"strings"

	"integraportal/dto"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxParticipants    = 15 // total including team leader
	feePerParticipant  = 150
	maxEventsPerPerson = 4
)

func RegistrationController(router *gin.Engine, firestoreClient *firestore.Client) {
	router.POST("/registration", func(c *gin.Context) {
		RegisterTeam(c, firestoreClient)
	})
}

// RegisterTeam validates and stores a full team registration: the team
// document, one participant document per member, a pending payment, the
// food token record, per-event team counters and the login credentials.
// Everything is written in one batch so a half-registered team cannot
// exist.
func RegisterTeam(c *gin.Context, firestoreClient *firestore.Client) {
	var req dto.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all required fields"})
		return
	}

	totalCount := 1 + len(req.Participants)
	if totalCount > maxParticipants {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Maximum %d participants allowed (including team leader)", maxParticipants),
		})
		return
	}

	if msg := validateMember(req.TeamLead, "Team leader"); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	for i, p := range req.Participants {
		if msg := validateMember(p, fmt.Sprintf("Participant %d", i+2)); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	staffCount := 0
	if req.Staff != nil {
		staffCount = 1
		if !services.ValidateEmail(req.Staff.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff email"})
			return
		}
		if !services.ValidatePhone(req.Staff.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff phone number"})
			return
		}
	}

	// Duplicate email/phone within this form.
	emails := make(map[string]bool)
	phones := make(map[string]bool)
	members := append([]dto.RegistrationMember{req.TeamLead}, req.Participants...)
	for _, m := range members {
		emailKey := strings.ToLower(strings.TrimSpace(m.Email))
		if emails[emailKey] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exist"})
			return
		}
		emails[emailKey] = true

		phoneKey := strings.TrimSpace(m.Phone)
		if phones[phoneKey] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mobile number already exist"})
			return
		}
		phones[phoneKey] = true
	}
	if req.Staff != nil {
		staffEmail := strings.ToLower(strings.TrimSpace(req.Staff.Email))
		if emails[staffEmail] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exist"})
			return
		}
		if phones[strings.TrimSpace(req.Staff.Phone)] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mobile number already exist"})
			return
		}
	}

	// Duplicate email/phone across existing registrations.
	for email := range emails {
		exists, err := services.ContactExists(c, firestoreClient, "email", email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking for duplicate email / mobile. Please try again."})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exist"})
			return
		}
	}
	for phone := range phones {
		exists, err := services.ContactExists(c, firestoreClient, "phone", phone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking for duplicate email / mobile. Please try again."})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Mobile number already exist"})
			return
		}
	}

	regID, err := nextRegID(c, firestoreClient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate registration ID"})
		return
	}

	teamMembers := make([]model.TeamMember, 0, len(members))
	eventSet := make(map[string]bool)
	for _, m := range members {
		teamMembers = append(teamMembers, model.TeamMember{
			Name:   m.Name,
			Email:  m.Email,
			Phone:  m.Phone,
			Events: m.Events,
		})
		for _, event := range m.Events {
			eventSet[event] = true
		}
	}
	teamEvents := make([]string, 0, len(eventSet))
	for _, event := range model.EventsList {
		if eventSet[event] {
			teamEvents = append(teamEvents, event)
		}
	}

	totalAmount := totalCount * feePerParticipant

	var staffDetails *model.StaffDetails
	if req.Staff != nil {
		staffDetails = &model.StaffDetails{
			Name:  req.Staff.Name,
			Phone: req.Staff.Phone,
			Email: req.Staff.Email,
		}
	}

	// Participant login password defaults to the team lead phone; only
	// the hash is persisted.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.TeamLead.Phone), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again."})
		return
	}

	teamRef := firestoreClient.Collection("teams").NewDoc()
	batch := firestoreClient.Batch()

	batch.Set(teamRef, model.Team{
		CollegeName:      req.CollegeName,
		TeamLead:         req.TeamLead.Name,
		Email:            req.TeamLead.Email,
		Phone:            req.TeamLead.Phone,
		Participants:     teamMembers,
		ParticipantCount: totalCount,
		StaffCount:       staffCount,
		StaffDetails:     staffDetails,
		Events:           teamEvents,
		Amount:           totalAmount,
		PaymentStatus:    model.PaymentPending,
		TransactionID:    req.TransactionID,
		RegID:            regID,
		LotNumbers:       map[string][]int{},
	})

	for i, m := range members {
		batch.Set(firestoreClient.Collection("participants").NewDoc(), model.Participant{
			TeamID:     teamRef.ID,
			Name:       m.Name,
			Email:      m.Email,
			Phone:      m.Phone,
			Events:     m.Events,
			IsTeamLead: i == 0,
			LotNumber:  map[string]int{},
		})
	}

	batch.Set(firestoreClient.Collection("payments").NewDoc(), model.Payment{
		TeamID:        teamRef.ID,
		Amount:        totalAmount,
		TransactionID: req.TransactionID,
		Status:        model.PaymentPending,
	})

	tokenCount := totalCount + staffCount
	tokenRef := firestoreClient.Collection("foodTokens").NewDoc()
	batch.Set(tokenRef, map[string]interface{}{
		"teamId":     teamRef.ID,
		"regId":      regID,
		"tokenCount": tokenCount,
		"redeemed":   0,
		"createdAt":  firestore.ServerTimestamp,
	})

	for _, event := range teamEvents {
		batch.Set(firestoreClient.Collection("events").Doc(event), map[string]interface{}{
			"eventName": event,
			"teamCount": firestore.Increment(1),
		}, firestore.MergeAll)
	}

	batch.Set(firestoreClient.Collection("credentials").Doc(regID), model.Credential{
		Email:        req.TeamLead.Email,
		Username:     req.TeamLead.Email,
		PasswordHash: string(passwordHash),
		RegID:        regID,
		College:      req.CollegeName,
	})

	if _, err := batch.Commit(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Registration pending verification",
		"teamId":           teamRef.ID,
		"regId":            regID,
		"tokenId":          tokenRef.ID,
		"amount":           totalAmount,
		"participantCount": totalCount,
		"staffCount":       staffCount,
		"tokenCount":       tokenCount,
		"username":         req.TeamLead.Email,
		"password":         req.TeamLead.Phone,
	})
}

func validateMember(m dto.RegistrationMember, label string) string {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Sprintf("Please fill all fields for %s", label)
	}
	if !services.ValidateEmail(m.Email) {
		return fmt.Sprintf("Invalid email for %s", label)
	}
	if !services.ValidatePhone(m.Phone) {
		return fmt.Sprintf("Invalid phone number for %s", label)
	}
	if len(m.Events) == 0 {
		return fmt.Sprintf("%s must select at least one event", label)
	}
	if len(m.Events) > maxEventsPerPerson {
		return fmt.Sprintf("%s can select maximum %d events", label, maxEventsPerPerson)
	}
	for _, event := range m.Events {
		if !knownEvent(event) {
			return fmt.Sprintf("Unknown event %q for %s", event, label)
		}
	}
	return ""
}

func knownEvent(name string) bool {
	for _, event := range model.EventsList {
		if event == name {
			return true
		}
	}
	return false
}
