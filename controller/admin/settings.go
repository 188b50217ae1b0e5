package admin

import (
	"net/http"

	"integraportal/dto"
	"integraportal/middleware"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func SettingsController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/admin/settings", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			GetSettings(c, firestoreClient)
		})
		routes.PUT("", func(c *gin.Context) {
			UpdateSettings(c, firestoreClient)
		})
		routes.PUT("/feedback", func(c *gin.Context) {
			UpdateFeedbackSettings(c, firestoreClient)
		})
	}
}

func GetSettings(c *gin.Context, firestoreClient *firestore.Client) {
	settings, err := services.GetAdminSettings(c, firestoreClient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"settings":          settings,
		"foodDeleteAllowed": settings.FoodDeleteAllowed(),
	})
}

// UpdateSettings merges the provided fields into adminSettings/main.
// Absent fields keep their stored value, so the food delete toggle can
// be flipped without resending the venue text.
func UpdateSettings(c *gin.Context, firestoreClient *firestore.Client) {
	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	update := map[string]interface{}{
		"updatedAt": firestore.ServerTimestamp,
	}
	if req.PaymentQRURL != "" {
		update["paymentQRUrl"] = req.PaymentQRURL
	}
	if req.Venue != "" {
		update["venue"] = req.Venue
	}
	if req.Instructions != "" {
		update["instructions"] = req.Instructions
	}
	if req.EventTimings != nil {
		update["eventTimings"] = req.EventTimings
	}
	if req.FoodDeleteEnabled != nil {
		update["foodDeleteEnabled"] = *req.FoodDeleteEnabled
	}

	ref := firestoreClient.Collection("adminSettings").Doc("main")
	if _, err := ref.Set(c, update, firestore.MergeAll); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

func UpdateFeedbackSettings(c *gin.Context, firestoreClient *firestore.Client) {
	var req dto.FeedbackSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ref := firestoreClient.Collection("adminSettings").Doc("main")
	update := map[string]interface{}{
		"feedbackEnabled":   req.FeedbackEnabled,
		"feedbackQuestions": req.FeedbackQuestions,
		"updatedAt":         firestore.ServerTimestamp,
	}
	if _, err := ref.Set(c, update, firestore.MergeAll); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback settings updated"})
}
