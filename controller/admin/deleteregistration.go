package admin

import (
	"log"
	"net/http"

	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// Firestore caps a batch at 500 operations.
const batchLimit = 500

// DeleteRegistration removes a team and everything hanging off it:
// participants, payments, food token, lots and the credentials document.
func DeleteRegistration(c *gin.Context, firestoreClient *firestore.Client) {
	teamID := c.Param("id")

	team, err := services.GetTeam(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}

	refs := []*firestore.DocumentRef{firestoreClient.Collection("teams").Doc(teamID)}
	for _, collection := range []string{"participants", "payments", "foodTokens", "lots"} {
		docs, err := firestoreClient.Collection(collection).
			Where("teamId", "==", teamID).
			Documents(c).GetAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect registration data"})
			return
		}
		for _, doc := range docs {
			refs = append(refs, doc.Ref)
		}
	}
	if team.RegID != "" {
		refs = append(refs, firestoreClient.Collection("credentials").Doc(team.RegID))
	}

	// Redemption ledger entries reference the token, not the team.
	tokenDocs, err := firestoreClient.Collection("foodTokens").
		Where("teamId", "==", teamID).
		Documents(c).GetAll()
	if err == nil {
		for _, tokenDoc := range tokenDocs {
			entryDocs, err := firestoreClient.Collection("foodRedemptions").
				Where("tokenId", "==", tokenDoc.Ref.ID).
				Documents(c).GetAll()
			if err != nil {
				continue
			}
			for _, doc := range entryDocs {
				refs = append(refs, doc.Ref)
			}
		}
	}

	if err := deleteInBatches(c, firestoreClient, refs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete registration"})
		return
	}

	// Team event counters shrink by one per event the team was in. The
	// hourly refresh job recomputes them, so a failed decrement is logged
	// rather than failing the delete.
	for _, event := range team.Events {
		_, err := firestoreClient.Collection("events").Doc(event).Update(c, []firestore.Update{
			{Path: "teamCount", Value: firestore.Increment(-1)},
		})
		if err != nil {
			log.Printf("delete registration %s: failed to decrement team count for %s: %v", team.RegID, event, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Registration deleted",
		"regId":   team.RegID,
		"deleted": len(refs),
	})
}

func deleteInBatches(c *gin.Context, firestoreClient *firestore.Client, refs []*firestore.DocumentRef) error {
	for start := 0; start < len(refs); start += batchLimit {
		end := start + batchLimit
		if end > len(refs) {
			end = len(refs)
		}

		batch := firestoreClient.Batch()
		for _, ref := range refs[start:end] {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(c); err != nil {
			return err
		}
	}
	return nil
}
