package food

import (
	"errors"
	"net/http"

	"integraportal/dto"
	"integraportal/foodtoken"
	"integraportal/qrtoken"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// RedeemToken validates the scanned payload and runs the atomic
// redemption transaction. Decode problems and transaction failures are
// terminal for this scan only; the station resumes scanning either way.
func RedeemToken(c *gin.Context, firestoreClient *firestore.Client) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	payload, err := qrtoken.Decode(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid QR code"})
		return
	}

	operatorID := c.MustGet("operatorId").(string)

	engine := foodtoken.NewEngine(foodtoken.NewFirestoreStore(firestoreClient))
	result, err := engine.Redeem(c, payload.TeamID, payload.TokenID, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, foodtoken.ErrTokenNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		case errors.Is(err, foodtoken.ErrLimitExceeded):
			c.JSON(http.StatusConflict, gin.H{"error": "All tokens already redeemed for this QR"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing QR code. Try again."})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
