package admin

import (
	"net/http"
	"sort"

	"integraportal/middleware"
	"integraportal/model"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
)

func AdminController(router *gin.Engine, firestoreClient *firestore.Client, app *firebase.App) {
	routes := router.Group("/admin", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("/registrations", func(c *gin.Context) {
			ListRegistrations(c, firestoreClient)
		})
		routes.GET("/overview", func(c *gin.Context) {
			Overview(c, firestoreClient)
		})
		routes.PUT("/registrations/:id/verify", func(c *gin.Context) {
			VerifyPayment(c, firestoreClient, app)
		})
		routes.PUT("/registrations/:id/reject", func(c *gin.Context) {
			RejectPayment(c, firestoreClient)
		})
		routes.PUT("/registrations/:id/unverify", func(c *gin.Context) {
			UnverifyPayment(c, firestoreClient)
		})
		routes.DELETE("/registrations/:id", func(c *gin.Context) {
			DeleteRegistration(c, firestoreClient)
		})
	}
}

// ListRegistrations returns every team, newest first, optionally filtered
// by payment status (?status=pending|verified|rejected).
func ListRegistrations(c *gin.Context, firestoreClient *firestore.Client) {
	query := firestoreClient.Collection("teams").Query
	if status := c.Query("status"); status != "" {
		query = query.Where("paymentStatus", "==", status)
	}

	docs, err := query.Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load registrations"})
		return
	}

	type registration struct {
		ID string `json:"id"`
		model.Team
	}
	registrations := make([]registration, 0, len(docs))
	for _, doc := range docs {
		var team model.Team
		if err := doc.DataTo(&team); err != nil {
			continue
		}
		registrations = append(registrations, registration{ID: doc.Ref.ID, Team: team})
	}
	sort.Slice(registrations, func(i, j int) bool {
		return registrations[i].CreatedAt.After(registrations[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{"registrations": registrations, "count": len(registrations)})
}

// Overview aggregates the dashboard headline numbers: team and
// participant totals, collected amount and per-event team counts.
func Overview(c *gin.Context, firestoreClient *firestore.Client) {
	docs, err := firestoreClient.Collection("teams").Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load registrations"})
		return
	}

	var totalTeams, verifiedTeams, pendingTeams, rejectedTeams int
	var totalParticipants, collectedAmount, pendingAmount int
	eventTeams := make(map[string]int)

	for _, doc := range docs {
		var team model.Team
		if err := doc.DataTo(&team); err != nil {
			continue
		}

		totalTeams++
		totalParticipants += team.ParticipantCount
		switch team.PaymentStatus {
		case model.PaymentVerified:
			verifiedTeams++
			collectedAmount += team.Amount
		case model.PaymentRejected:
			rejectedTeams++
		default:
			pendingTeams++
			pendingAmount += team.Amount
		}
		for _, event := range team.Events {
			eventTeams[event]++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalTeams":        totalTeams,
		"verifiedTeams":     verifiedTeams,
		"pendingTeams":      pendingTeams,
		"rejectedTeams":     rejectedTeams,
		"totalParticipants": totalParticipants,
		"collectedAmount":   collectedAmount,
		"pendingAmount":     pendingAmount,
		"eventTeams":        eventTeams,
	})
}
