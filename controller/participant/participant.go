package participant

import (
	"net/http"

	"integraportal/middleware"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ParticipantController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/participant", middleware.AccessTokenMiddleware(), middleware.ParticipantMiddleware())
	{
		routes.GET("/team", func(c *gin.Context) {
			TeamDashboard(c, firestoreClient)
		})
		routes.GET("/foodtoken", func(c *gin.Context) {
			FoodTokenInfo(c, firestoreClient)
		})
		routes.GET("/foodtoken/qr", func(c *gin.Context) {
			FoodTokenQR(c, firestoreClient)
		})
		routes.POST("/participants", func(c *gin.Context) {
			AddParticipant(c, firestoreClient)
		})
		routes.POST("/feedback", func(c *gin.Context) {
			SubmitFeedback(c, firestoreClient)
		})
		routes.GET("/info", func(c *gin.Context) {
			EventInfo(c, firestoreClient)
		})
	}
}

func teamIDFromClaims(c *gin.Context) (string, bool) {
	teamID, ok := c.Get("teamId")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No team linked to this login"})
		return "", false
	}
	id, ok := teamID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No team linked to this login"})
		return "", false
	}
	return id, true
}

// TeamDashboard returns the team document with its participants and the
// lot numbers assigned so far, which is everything the participant
// dashboard renders above the food token card.
func TeamDashboard(c *gin.Context, firestoreClient *firestore.Client) {
	teamID, ok := teamIDFromClaims(c)
	if !ok {
		return
	}

	team, err := services.GetTeam(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	participants, _, err := services.GetTeamParticipants(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load participants"})
		return
	}

	lotDocs, err := firestoreClient.Collection("lots").
		Where("teamId", "==", teamID).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lots"})
		return
	}
	lots := make([]model.Lot, 0, len(lotDocs))
	for _, doc := range lotDocs {
		var lot model.Lot
		if err := doc.DataTo(&lot); err != nil {
			continue
		}
		lots = append(lots, lot)
	}

	c.JSON(http.StatusOK, gin.H{
		"team":         team,
		"participants": participants,
		"lots":         lots,
	})
}

// EventInfo exposes the venue, instructions and event timings the admin
// has published, plus whether feedback is open.
func EventInfo(c *gin.Context, firestoreClient *firestore.Client) {
	settings, err := services.GetAdminSettings(c, firestoreClient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"venue":             settings.Venue,
		"instructions":      settings.Instructions,
		"eventTimings":      settings.EventTimings,
		"feedbackEnabled":   settings.FeedbackEnabled,
		"feedbackQuestions": settings.FeedbackQuestions,
	})
}
