package admin

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"integraportal/middleware"
	"integraportal/model"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

func ReportsController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/admin/reports", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("/:name", func(c *gin.Context) {
			ExportReport(c, firestoreClient)
		})
	}
}

// ExportReport streams one of the named CSV reports. Report rows come
// straight from the stored documents; no aggregation beyond what the
// sheet needs.
func ExportReport(c *gin.Context, firestoreClient *firestore.Client) {
	name := c.Param("name")

	var rows [][]string
	var err error
	switch name {
	case "registrations":
		rows, err = registrationRows(c, firestoreClient)
	case "payments":
		rows, err = paymentRows(c, firestoreClient)
	case "food":
		rows, err = foodSummaryRows(c, firestoreClient)
	case "tokens":
		rows, err = foodRows(c, firestoreClient)
	case "lots":
		rows, err = lotRows(c, firestoreClient, false)
	case "attendance":
		rows, err = lotRows(c, firestoreClient, true)
	case "feedback":
		rows, err = feedbackRows(c, firestoreClient)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown report"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	filename := fmt.Sprintf("integra-%s-%s.csv", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(c.Writer)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return
		}
	}
	writer.Flush()
}

func registrationRows(c *gin.Context, firestoreClient *firestore.Client) ([][]string, error) {
	docs, err := firestoreClient.Collection("teams").Documents(c).GetAll()
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"Reg ID", "College", "Team Lead", "Email", "Phone", "Participants", "Staff", "Events", "Amount", "Status", "Registered At"}}
	for _, doc := range docs {
		var team model.Team
		if err := doc.DataTo(&team); err != nil {
			continue
		}
		rows = append(rows, []string{
			team.RegID,
			team.CollegeName,
			team.TeamLead,
			team.Email,
			team.Phone,
			strconv.Itoa(team.ParticipantCount),
			strconv.Itoa(team.StaffCount),
			strings.Join(team.Events, "; "),
			strconv.Itoa(team.Amount),
			team.PaymentStatus,
			team.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows, nil
}

func paymentRows(c *gin.Context, firestoreClient *firestore.Client) ([][]string, error) {
	docs, err := firestoreClient.Collection("payments").Documents(c).GetAll()
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"Team ID", "Amount", "Transaction ID", "Status", "Created At", "Verified At"}}
	for _, doc := range docs {
		var payment model.Payment
		if err := doc.DataTo(&payment); err != nil {
			continue
		}
		verifiedAt := ""
		if payment.VerifiedAt != nil {
			verifiedAt = payment.VerifiedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			payment.TeamID,
			strconv.Itoa(payment.Amount),
			payment.TransactionID,
			payment.Status,
			payment.CreatedAt.Format(time.RFC3339),
			verifiedAt,
		})
	}
	return rows, nil
}

func foodSummaryRows(c *gin.Context, firestoreClient *firestore.Client) ([][]string, error) {
	perToken, err := foodRows(c, firestoreClient)
	if err != nil {
		return nil, err
	}

	type totals struct {
		tokenCount int
		redeemed   int
	}
	byCollege := make(map[string]*totals)
	order := []string{}
	for _, row := range perToken[1:] {
		college := row[2]
		entry, ok := byCollege[college]
		if !ok {
			entry = &totals{}
			byCollege[college] = entry
			order = append(order, college)
		}
		tokenCount, _ := strconv.Atoi(row[3])
		redeemed, _ := strconv.Atoi(row[4])
		entry.tokenCount += tokenCount
		entry.redeemed += redeemed
	}

	rows := [][]string{{"College", "Token Count", "Redeemed", "Remaining"}}
	for _, college := range order {
		entry := byCollege[college]
		rows = append(rows, []string{
			college,
			strconv.Itoa(entry.tokenCount),
			strconv.Itoa(entry.redeemed),
			strconv.Itoa(entry.tokenCount - entry.redeemed),
		})
	}
	return rows, nil
}

func foodRows(c *gin.Context, firestoreClient *firestore.Client) ([][]string, error) {
	tokenDocs, err := firestoreClient.Collection("foodTokens").Documents(c).GetAll()
	if err != nil {
		return nil, err
	}

	colleges := make(map[string]string)
	teamDocs, err := firestoreClient.Collection("teams").Documents(c).GetAll()
	if err == nil {
		for _, doc := range teamDocs {
			if college, ok := doc.Data()["collegeName"].(string); ok {
				colleges[doc.Ref.ID] = college
			}
		}
	}

	rows := [][]string{{"Token ID", "Reg ID", "College", "Token Count", "Redeemed", "Remaining"}}
	for _, doc := range tokenDocs {
		data := doc.Data()
		teamID, _ := data["teamId"].(string)
		regID, _ := data["regId"].(string)
		tokenCount := csvInt(data["tokenCount"])
		redeemed := csvInt(data["redeemed"])
		rows = append(rows, []string{
			doc.Ref.ID,
			regID,
			colleges[teamID],
			strconv.Itoa(tokenCount),
			strconv.Itoa(redeemed),
			strconv.Itoa(tokenCount - redeemed),
		})
	}
	return rows, nil
}

func lotRows(c *gin.Context, firestoreClient *firestore.Client, withAttendance bool) ([][]string, error) {
	docs, err := firestoreClient.Collection("lots").Documents(c).GetAll()
	if err != nil {
		return nil, err
	}

	header := []string{"Event", "Lot", "College", "Participant", "Phone"}
	if withAttendance {
		header = append(header, "Attended", "Attendance At")
	}
	rows := [][]string{header}
	for _, doc := range docs {
		var lot model.Lot
		if err := doc.DataTo(&lot); err != nil {
			continue
		}
		row := []string{
			lot.EventName,
			strconv.Itoa(lot.LotNumber),
			lot.CollegeName,
			lot.ParticipantName,
			lot.ParticipantPhone,
		}
		if withAttendance {
			attendanceAt := ""
			if lot.AttendanceAt != nil {
				attendanceAt = lot.AttendanceAt.Format(time.RFC3339)
			}
			row = append(row, strconv.FormatBool(lot.Attendance), attendanceAt)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func feedbackRows(c *gin.Context, firestoreClient *firestore.Client) ([][]string, error) {
	docs, err := firestoreClient.Collection("feedback").Documents(c).GetAll()
	if err != nil {
		return nil, err
	}

	questions := []string{}
	if settingsDoc, err := firestoreClient.Collection("adminSettings").Doc("main").Get(c); err == nil {
		if raw, ok := settingsDoc.Data()["feedbackQuestions"].([]interface{}); ok {
			for _, q := range raw {
				if s, ok := q.(string); ok {
					questions = append(questions, s)
				}
			}
		}
	}

	header := append([]string{"Email", "College", "Submitted At"}, questions...)
	rows := [][]string{header}
	for _, doc := range docs {
		var fb model.Feedback
		if err := doc.DataTo(&fb); err != nil {
			continue
		}
		row := []string{fb.Email, fb.CollegeName, fb.SubmittedAt.Format(time.RFC3339)}
		for _, q := range questions {
			if rating, ok := fb.Responses[q]; ok {
				row = append(row, strconv.Itoa(rating))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
