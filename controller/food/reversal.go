package food

import (
	"errors"
	"net/http"

	"integraportal/foodtoken"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// DeleteRedemption reverses one ledger entry: the token balance is
// restored and the entry removed in a single transaction. The engine has
// no permission check of its own, so the admin delete toggle is enforced
// here before it runs.
func DeleteRedemption(c *gin.Context, firestoreClient *firestore.Client) {
	if !deleteAllowed(c, firestoreClient) {
		return
	}

	entryID := c.Param("id")
	if entryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redemption ID is required"})
		return
	}

	engine := foodtoken.NewEngine(foodtoken.NewFirestoreStore(firestoreClient))
	result, err := engine.Reverse(c, entryID)
	if err != nil {
		if errors.Is(err, foodtoken.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Redemption entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting redemption"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Redemption deleted and counts updated",
		"result":  result,
	})
}

// ResetTokenRedemption is the legacy path for token records with no
// ledger entry to reverse individually: zero the counter and clean up
// any orphaned entries referencing the token.
func ResetTokenRedemption(c *gin.Context, firestoreClient *firestore.Client) {
	if !deleteAllowed(c, firestoreClient) {
		return
	}

	tokenID := c.Param("id")
	if tokenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token ID is required"})
		return
	}

	engine := foodtoken.NewEngine(foodtoken.NewFirestoreStore(firestoreClient))
	result, err := engine.ResetToken(c, tokenID)
	if err != nil {
		if errors.Is(err, foodtoken.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error resetting token redemption"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Redemption reset and counts updated",
		"result":  result,
	})
}

func deleteAllowed(c *gin.Context, firestoreClient *firestore.Client) bool {
	settings, err := services.GetAdminSettings(c, firestoreClient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return false
	}
	if !settings.FoodDeleteAllowed() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Deleting redemptions is disabled by the admin"})
		return false
	}
	return true
}
