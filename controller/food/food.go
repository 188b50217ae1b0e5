package food

import (
	"net/http"

	"integraportal/middleware"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/iterator"
)

func FoodController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/food", middleware.AccessTokenMiddleware(), middleware.FoodCoordinatorMiddleware())
	{
		routes.POST("/redeem", func(c *gin.Context) {
			RedeemToken(c, firestoreClient)
		})
		routes.GET("/colleges", func(c *gin.Context) {
			CollegeSummary(c, firestoreClient)
		})
		routes.GET("/redemptions", func(c *gin.Context) {
			RecentRedemptions(c, firestoreClient)
		})
		routes.GET("/permissions", func(c *gin.Context) {
			FoodPermissions(c, firestoreClient)
		})
		routes.DELETE("/redemptions/:id", func(c *gin.Context) {
			DeleteRedemption(c, firestoreClient)
		})
		routes.DELETE("/tokens/:id/redemptions", func(c *gin.Context) {
			ResetTokenRedemption(c, firestoreClient)
		})
	}
}

// CollegeSummary aggregates token counts per college. Tokens and teams
// are fetched once up front to avoid an N+1 team lookup.
func CollegeSummary(c *gin.Context, firestoreClient *firestore.Client) {
	tokenDocs, err := firestoreClient.Collection("foodTokens").Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load food tokens"})
		return
	}
	teamDocs, err := firestoreClient.Collection("teams").Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load teams"})
		return
	}

	collegeByTeam := make(map[string]string, len(teamDocs))
	for _, doc := range teamDocs {
		name, _ := doc.Data()["collegeName"].(string)
		if name == "" {
			name = "Unknown College"
		}
		collegeByTeam[doc.Ref.ID] = name
	}

	type collegeTotals struct {
		College    string `json:"college"`
		TokenCount int    `json:"tokenCount"`
		Redeemed   int    `json:"redeemed"`
		Remaining  int    `json:"remaining"`
	}

	totalsByCollege := make(map[string]*collegeTotals)
	grandTotal := 0
	grandRedeemed := 0
	missingTeams := 0

	for _, doc := range tokenDocs {
		data := doc.Data()
		teamID, _ := data["teamId"].(string)
		college, ok := collegeByTeam[teamID]
		if teamID == "" || !ok {
			missingTeams++
			continue
		}

		entry := totalsByCollege[college]
		if entry == nil {
			entry = &collegeTotals{College: college}
			totalsByCollege[college] = entry
		}

		tokenCount := intField(data, "tokenCount")
		redeemed := intField(data, "redeemed")
		entry.TokenCount += tokenCount
		entry.Redeemed += redeemed
		grandTotal += tokenCount
		grandRedeemed += redeemed
	}

	colleges := make([]collegeTotals, 0, len(totalsByCollege))
	for _, entry := range totalsByCollege {
		entry.Remaining = entry.TokenCount - entry.Redeemed
		colleges = append(colleges, *entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"colleges":      colleges,
		"totalTokens":   grandTotal,
		"totalRedeemed": grandRedeemed,
		"remaining":     grandTotal - grandRedeemed,
		"missingTeams":  missingTeams,
	})
}

// RecentRedemptions lists the newest ledger entries. When the ledger is
// empty (records predating it) the response falls back to one row per
// token with a nonzero redeemed count.
func RecentRedemptions(c *gin.Context, firestoreClient *firestore.Client) {
	iter := firestoreClient.Collection("foodRedemptions").
		OrderBy("redeemedAt", firestore.Desc).
		Limit(100).
		Documents(c)

	entries := make([]gin.H, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load redemptions"})
			return
		}
		data := doc.Data()
		entries = append(entries, gin.H{
			"id":            doc.Ref.ID,
			"tokenId":       data["tokenId"],
			"teamId":        data["teamId"],
			"regId":         data["regId"],
			"collegeName":   data["collegeName"],
			"redeemedCount": intField(data, "redeemedCount"),
			"redeemedAt":    data["redeemedAt"],
			"scannerId":     data["scannerId"],
		})
	}

	if len(entries) > 0 {
		c.JSON(http.StatusOK, gin.H{"entries": entries, "legacy": false})
		return
	}

	tokenDocs, err := firestoreClient.Collection("foodTokens").
		Where("redeemed", ">", 0).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load redeemed tokens"})
		return
	}

	for _, doc := range tokenDocs {
		data := doc.Data()
		entries = append(entries, gin.H{
			"tokenId":    doc.Ref.ID,
			"teamId":     data["teamId"],
			"regId":      data["regId"],
			"redeemed":   intField(data, "redeemed"),
			"redeemedAt": data["redeemedAt"],
			"scannerId":  data["scannerId"],
		})
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "legacy": true})
}

// FoodPermissions exposes the admin delete toggle so the dashboard can
// decide whether to render reversal affordances.
func FoodPermissions(c *gin.Context, firestoreClient *firestore.Client) {
	settings, err := services.GetAdminSettings(c, firestoreClient)
	if err != nil {
		// Default-allow mirrors the dashboard behavior when settings
		// cannot be read.
		settings = &model.AdminSettings{}
	}
	c.JSON(http.StatusOK, gin.H{"deleteEnabled": settings.FoodDeleteAllowed()})
}

func intField(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
