package coordinator

import (
	"net/http"
	"sort"

	"integraportal/dto"
	"integraportal/middleware"
	"integraportal/model"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func CoordinatorController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/coordinator", middleware.AccessTokenMiddleware(), middleware.CoordinatorMiddleware())
	{
		routes.GET("/lots", func(c *gin.Context) {
			EventLots(c, firestoreClient)
		})
		routes.PUT("/lots/:id/attendance", func(c *gin.Context) {
			MarkAttendance(c, firestoreClient)
		})
	}
}

func eventNameFromClaims(c *gin.Context) (string, bool) {
	value, ok := c.Get("eventName")
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "No event assigned to this coordinator"})
		return "", false
	}
	eventName, ok := value.(string)
	if !ok || eventName == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "No event assigned to this coordinator"})
		return "", false
	}
	return eventName, true
}

// EventLots returns the coordinator's event lots grouped by college,
// ordered by lot number, with attendance state per participant.
func EventLots(c *gin.Context, firestoreClient *firestore.Client) {
	eventName, ok := eventNameFromClaims(c)
	if !ok {
		return
	}

	docs, err := firestoreClient.Collection("lots").
		Where("eventName", "==", eventName).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lots"})
		return
	}

	type lotView struct {
		ID string `json:"id"`
		model.Lot
	}
	type collegeGroup struct {
		CollegeName string    `json:"collegeName"`
		LotNumber   int       `json:"lotNumber"`
		Lots        []lotView `json:"lots"`
	}

	groups := make(map[string]*collegeGroup)
	for _, doc := range docs {
		var lot model.Lot
		if err := doc.DataTo(&lot); err != nil {
			continue
		}
		group, ok := groups[lot.CollegeName]
		if !ok {
			group = &collegeGroup{CollegeName: lot.CollegeName, LotNumber: lot.LotNumber}
			groups[lot.CollegeName] = group
		}
		group.Lots = append(group.Lots, lotView{ID: doc.Ref.ID, Lot: lot})
	}

	colleges := make([]*collegeGroup, 0, len(groups))
	present := 0
	total := 0
	for _, group := range groups {
		sort.Slice(group.Lots, func(i, j int) bool {
			return group.Lots[i].ParticipantName < group.Lots[j].ParticipantName
		})
		for _, lot := range group.Lots {
			total++
			if lot.Attendance {
				present++
			}
		}
		colleges = append(colleges, group)
	}
	sort.Slice(colleges, func(i, j int) bool {
		return colleges[i].LotNumber < colleges[j].LotNumber
	})

	c.JSON(http.StatusOK, gin.H{
		"eventName": eventName,
		"colleges":  colleges,
		"present":   present,
		"total":     total,
	})
}

// MarkAttendance toggles attendance on one lot. Coordinators can only
// touch lots of their own event.
func MarkAttendance(c *gin.Context, firestoreClient *firestore.Client) {
	eventName, ok := eventNameFromClaims(c)
	if !ok {
		return
	}

	lotID := c.Param("id")

	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ref := firestoreClient.Collection("lots").Doc(lotID)
	doc, err := ref.Get(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lot not found"})
		return
	}
	if lotEvent, _ := doc.Data()["eventName"].(string); lotEvent != eventName {
		c.JSON(http.StatusForbidden, gin.H{"error": "Lot belongs to a different event"})
		return
	}

	updates := []firestore.Update{
		{Path: "attendance", Value: *req.Attended},
	}
	if *req.Attended {
		updates = append(updates, firestore.Update{Path: "attendanceAt", Value: firestore.ServerTimestamp})
	} else {
		updates = append(updates, firestore.Update{Path: "attendanceAt", Value: nil})
	}

	if _, err := ref.Update(c, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance updated", "attended": *req.Attended})
}
