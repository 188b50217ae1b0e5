package admin

import (
	"net/http"

	"integraportal/middleware"
	"integraportal/model"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func LotsController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/admin/lots", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListLots(c, firestoreClient)
		})
		routes.POST("/assign", func(c *gin.Context) {
			AutoAssignLots(c, firestoreClient)
		})
	}
}

// lotEntry is one participant entered in one event, before numbering.
type lotEntry struct {
	EventName     string
	TeamID        string
	CollegeName   string
	ParticipantID string
	Name          string
	Phone         string
}

type lotAssignment struct {
	lotEntry
	LotNumber int
}

// assignLotNumbers gives every entry a lot number per event. Entries
// from the same college in the same event share one number so college
// mates present together; numbers count up from 1 within each event in
// input order.
func assignLotNumbers(entries []lotEntry) []lotAssignment {
	collegeLots := make(map[string]int) // eventName + college -> lot number
	nextLot := make(map[string]int)     // eventName -> next number

	assignments := make([]lotAssignment, 0, len(entries))
	for _, entry := range entries {
		key := entry.EventName + "\x00" + entry.CollegeName
		lot, ok := collegeLots[key]
		if !ok {
			nextLot[entry.EventName]++
			lot = nextLot[entry.EventName]
			collegeLots[key] = lot
		}
		assignments = append(assignments, lotAssignment{lotEntry: entry, LotNumber: lot})
	}
	return assignments
}

// AutoAssignLots wipes the lots collection and rebuilds it from all
// verified teams. Each participant gets one lot document per event they
// entered, and the participant and team documents are updated with the
// assigned numbers.
func AutoAssignLots(c *gin.Context, firestoreClient *firestore.Client) {
	existing, err := firestoreClient.Collection("lots").Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load existing lots"})
		return
	}
	refs := make([]*firestore.DocumentRef, 0, len(existing))
	for _, doc := range existing {
		refs = append(refs, doc.Ref)
	}
	if err := deleteInBatches(c, firestoreClient, refs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear existing lots"})
		return
	}

	teamDocs, err := firestoreClient.Collection("teams").
		Where("paymentStatus", "==", model.PaymentVerified).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load verified teams"})
		return
	}

	teams := make(map[string]*model.Team, len(teamDocs))
	teamOrder := make([]string, 0, len(teamDocs))
	for _, doc := range teamDocs {
		var team model.Team
		if err := doc.DataTo(&team); err != nil {
			continue
		}
		teams[doc.Ref.ID] = &team
		teamOrder = append(teamOrder, doc.Ref.ID)
	}

	// Entries are collected event-by-event so numbering stays stable
	// regardless of participant query ordering.
	participantsByTeam := make(map[string][]model.Participant)
	participantIDsByTeam := make(map[string][]string)
	for _, teamID := range teamOrder {
		docs, err := firestoreClient.Collection("participants").
			Where("teamId", "==", teamID).
			Documents(c).GetAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load participants"})
			return
		}
		for _, doc := range docs {
			var p model.Participant
			if err := doc.DataTo(&p); err != nil {
				continue
			}
			participantsByTeam[teamID] = append(participantsByTeam[teamID], p)
			participantIDsByTeam[teamID] = append(participantIDsByTeam[teamID], doc.Ref.ID)
		}
	}

	var entries []lotEntry
	for _, event := range model.LotEventsList {
		for _, teamID := range teamOrder {
			team := teams[teamID]
			for i, p := range participantsByTeam[teamID] {
				if !containsEvent(p.Events, event) {
					continue
				}
				entries = append(entries, lotEntry{
					EventName:     event,
					TeamID:        teamID,
					CollegeName:   team.CollegeName,
					ParticipantID: participantIDsByTeam[teamID][i],
					Name:          p.Name,
					Phone:         p.Phone,
				})
			}
		}
	}

	assignments := assignLotNumbers(entries)
	participantLots, teamLots := collectLotUpdates(assignments)

	// Lot documents and the participant/team lot-number updates move in
	// the same checked batches; a partial write must surface, not leave
	// the collections disagreeing behind a success response.
	ops := make([]func(*firestore.WriteBatch), 0, len(assignments)+len(participantLots)+len(teamLots))
	for _, a := range assignments {
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Set(firestoreClient.Collection("lots").NewDoc(), model.Lot{
				EventName:        a.EventName,
				TeamID:           a.TeamID,
				CollegeName:      a.CollegeName,
				LotNumber:        a.LotNumber,
				ParticipantName:  a.Name,
				ParticipantPhone: a.Phone,
			})
		})
	}
	for participantID, lots := range participantLots {
		ref := firestoreClient.Collection("participants").Doc(participantID)
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Update(ref, []firestore.Update{{Path: "lotNumber", Value: lots}})
		})
	}
	for teamID, lots := range teamLots {
		ref := firestoreClient.Collection("teams").Doc(teamID)
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Update(ref, []firestore.Update{{Path: "lotNumbers", Value: lots}})
		})
	}

	for start := 0; start < len(ops); start += batchLimit {
		end := start + batchLimit
		if end > len(ops) {
			end = len(ops)
		}
		batch := firestoreClient.Batch()
		for _, op := range ops[start:end] {
			op(batch)
		}
		if _, err := batch.Commit(c); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write lots"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Lots assigned",
		"teams":         len(teamOrder),
		"lotsAssigned":  len(assignments),
		"eventsCovered": len(model.LotEventsList),
	})
}

// collectLotUpdates folds the assignments into one lotNumber update per
// participant document and one lotNumbers update per team document.
func collectLotUpdates(assignments []lotAssignment) (map[string]map[string]int, map[string]map[string][]int) {
	participantLots := make(map[string]map[string]int) // participant doc id -> event -> lot
	teamLots := make(map[string]map[string][]int)      // team doc id -> event -> lots

	for _, a := range assignments {
		if participantLots[a.ParticipantID] == nil {
			participantLots[a.ParticipantID] = make(map[string]int)
		}
		participantLots[a.ParticipantID][a.EventName] = a.LotNumber

		if teamLots[a.TeamID] == nil {
			teamLots[a.TeamID] = make(map[string][]int)
		}
		if !containsLot(teamLots[a.TeamID][a.EventName], a.LotNumber) {
			teamLots[a.TeamID][a.EventName] = append(teamLots[a.TeamID][a.EventName], a.LotNumber)
		}
	}
	return participantLots, teamLots
}

// ListLots returns all lot documents, optionally filtered by event.
func ListLots(c *gin.Context, firestoreClient *firestore.Client) {
	query := firestoreClient.Collection("lots").Query
	if event := c.Query("event"); event != "" {
		query = query.Where("eventName", "==", event)
	}

	docs, err := query.Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lots"})
		return
	}

	type lotView struct {
		ID string `json:"id"`
		model.Lot
	}
	lots := make([]lotView, 0, len(docs))
	for _, doc := range docs {
		var lot model.Lot
		if err := doc.DataTo(&lot); err != nil {
			continue
		}
		lots = append(lots, lotView{ID: doc.Ref.ID, Lot: lot})
	}

	c.JSON(http.StatusOK, gin.H{"lots": lots, "count": len(lots)})
}

func containsEvent(events []string, name string) bool {
	for _, event := range events {
		if event == name {
			return true
		}
	}
	return false
}

func containsLot(lots []int, n int) bool {
	for _, lot := range lots {
		if lot == n {
			return true
		}
	}
	return false
}
