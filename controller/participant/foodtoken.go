package participant

import (
	"net/http"
	"strconv"
	"time"

	"integraportal/qrtoken"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func teamToken(c *gin.Context, firestoreClient *firestore.Client, teamID string) (*firestore.DocumentSnapshot, bool) {
	docs, err := firestoreClient.Collection("foodTokens").
		Where("teamId", "==", teamID).
		Limit(1).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load food token"})
		return nil, false
	}
	if len(docs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No food token found for this team"})
		return nil, false
	}
	return docs[0], true
}

func tokenInt(data map[string]interface{}, key string) int {
	switch n := data[key].(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// FoodTokenInfo reports the team's token balance for the dashboard
// counter next to the QR code.
func FoodTokenInfo(c *gin.Context, firestoreClient *firestore.Client) {
	teamID, ok := teamIDFromClaims(c)
	if !ok {
		return
	}

	doc, ok := teamToken(c, firestoreClient, teamID)
	if !ok {
		return
	}

	data := doc.Data()
	tokenCount := tokenInt(data, "tokenCount")
	redeemed := tokenInt(data, "redeemed")

	c.JSON(http.StatusOK, gin.H{
		"tokenId":    doc.Ref.ID,
		"tokenCount": tokenCount,
		"redeemed":   redeemed,
		"remaining":  tokenCount - redeemed,
	})
}

// FoodTokenQR renders the team's token as a QR PNG. The payload embeds
// both ids so the scanner can redeem without a lookup round trip.
func FoodTokenQR(c *gin.Context, firestoreClient *firestore.Client) {
	teamID, ok := teamIDFromClaims(c)
	if !ok {
		return
	}

	doc, ok := teamToken(c, firestoreClient, teamID)
	if !ok {
		return
	}

	data := doc.Data()
	regID, _ := data["regId"].(string)

	size := 300
	if s := c.Query("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 100 && parsed <= 1000 {
			size = parsed
		}
	}

	png, err := qrtoken.Image(qrtoken.Payload{
		TeamID:     teamID,
		TokenID:    doc.Ref.ID,
		RegID:      regID,
		TokenCount: tokenInt(data, "tokenCount"),
		Timestamp:  time.Now().UnixMilli(),
	}, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
