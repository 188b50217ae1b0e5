package food

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"integraportal/dto"
	"integraportal/foodtoken"
	"integraportal/middleware"
	"integraportal/scan"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
)

// station is one operator's live scan session plus the push device its
// browser feeds decoded frames into.
type station struct {
	session *scan.Session
	device  *scan.PushDevice
}

var (
	stationsMu sync.Mutex
	stations   = make(map[string]*station)
)

func ScannerController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/food/scanner", middleware.AccessTokenMiddleware(), middleware.FoodCoordinatorMiddleware())
	{
		routes.POST("/start", func(c *gin.Context) {
			StartScanner(c, firestoreClient)
		})
		routes.POST("/frames", func(c *gin.Context) {
			PushScannerFrame(c)
		})
		routes.GET("/status", func(c *gin.Context) {
			ScannerStatus(c)
		})
		routes.POST("/stop", func(c *gin.Context) {
			StopScanner(c)
		})
	}
}

// StartScanner opens a scan session for the calling operator. One
// session per operator; starting twice reports the running session.
func StartScanner(c *gin.Context, firestoreClient *firestore.Client) {
	operatorID := c.MustGet("operatorId").(string)

	stationsMu.Lock()
	defer stationsMu.Unlock()

	if existing, ok := stations[operatorID]; ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Scanner already running",
			"sessionId": existing.session.ID,
			"state":     existing.session.State().String(),
		})
		return
	}

	device := scan.NewPushDevice()
	session := scan.NewSession(scan.Config{
		Device:     device,
		Decoder:    scan.TextDecoder{},
		Redeemer:   foodtoken.NewEngine(foodtoken.NewFirestoreStore(firestoreClient)),
		OperatorID: operatorID,
	})

	// Session lifetime is bound to the station, not this request.
	if err := session.Start(context.Background()); err != nil {
		var devErr *scan.DeviceError
		if errors.As(err, &devErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": devErr.Message()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scanner"})
		return
	}

	stations[operatorID] = &station{session: session, device: device}
	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"state":     session.State().String(),
	})
}

// PushScannerFrame accepts one decoded QR text from the station browser.
// Frames pushed while a redemption is in flight are dropped by the
// session's single-flight lock, never queued.
func PushScannerFrame(c *gin.Context) {
	var req dto.ScannerFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	operatorID := c.MustGet("operatorId").(string)

	stationsMu.Lock()
	st, ok := stations[operatorID]
	stationsMu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scanner is not running"})
		return
	}

	accepted := st.device.Push(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"state":    st.session.State().String(),
	})
}

// ScannerStatus reports the session state and the outcome of the most
// recent decode so the dashboard can poll for results.
func ScannerStatus(c *gin.Context) {
	operatorID := c.MustGet("operatorId").(string)

	stationsMu.Lock()
	st, ok := stations[operatorID]
	stationsMu.Unlock()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": scan.StateIdle.String()})
		return
	}

	response := gin.H{
		"sessionId": st.session.ID,
		"state":     st.session.State().String(),
	}
	if outcome := st.session.LastOutcome(); outcome != nil {
		response["lastOutcome"] = outcome
	}
	c.JSON(http.StatusOK, response)
}

// StopScanner releases the session. Safe to call when nothing is running.
func StopScanner(c *gin.Context) {
	operatorID := c.MustGet("operatorId").(string)

	stationsMu.Lock()
	st, ok := stations[operatorID]
	delete(stations, operatorID)
	stationsMu.Unlock()

	if ok {
		st.session.Stop()
	}
	c.JSON(http.StatusOK, gin.H{"state": scan.StateIdle.String()})
}
