package participant

import (
	"net/http"

	"integraportal/dto"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// SubmitFeedback stores one feedback response per login. Submissions are
// only accepted while the admin has feedback enabled, and resubmitting
// overwrites the earlier response rather than duplicating it.
func SubmitFeedback(c *gin.Context, firestoreClient *firestore.Client) {
	teamID, ok := teamIDFromClaims(c)
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	settings, err := services.GetAdminSettings(c, firestoreClient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	if !settings.FeedbackEnabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "Feedback is not open yet"})
		return
	}

	for question, rating := range req.Responses {
		if rating < 1 || rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating for " + question + " must be between 1 and 5"})
			return
		}
	}

	team, err := services.GetTeam(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	// Keyed by team id so one team submits at most one response.
	_, err = firestoreClient.Collection("feedback").Doc(teamID).Set(c, model.Feedback{
		Email:       team.Email,
		CollegeName: team.CollegeName,
		Responses:   req.Responses,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thank you for your feedback!"})
}
