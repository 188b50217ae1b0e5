package scheduler

import (
	"context"
	"log"

	"integraportal/connection"
	"integraportal/controller/food"
	"integraportal/model"

	"cloud.google.com/go/firestore"
	"github.com/robfig/cron/v3"
)

func StartScheduler() {
	firestoreClient, err := connection.FBConnection()
	if err != nil {
		log.Printf("scheduler: firestore init failed, jobs disabled: %v", err)
		return
	}

	c := cron.New(cron.WithSeconds())

	// Nightly ledger audit at 02:00.
	_, err = c.AddFunc("0 0 2 * * *", func() {
		food.ConservationAuditJob(firestoreClient)
	})
	if err != nil {
		log.Printf("scheduler: failed to register ledger audit: %v", err)
	}

	// Hourly refresh of the per-event team counters.
	_, err = c.AddFunc("0 0 * * * *", func() {
		RefreshEventCounts(firestoreClient)
	})
	if err != nil {
		log.Printf("scheduler: failed to register event count refresh: %v", err)
	}

	c.Start()
	log.Println("Scheduler started")
	select {}
}

// RefreshEventCounts recomputes events/<name>.teamCount from the team
// documents. The counter is incremented on registration and decremented
// on delete; this job corrects any drift from partial failures.
func RefreshEventCounts(firestoreClient *firestore.Client) {
	ctx := context.Background()

	docs, err := firestoreClient.Collection("teams").Documents(ctx).GetAll()
	if err != nil {
		log.Printf("event counts: failed to load teams: %v", err)
		return
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		events, ok := doc.Data()["events"].([]interface{})
		if !ok {
			continue
		}
		for _, e := range events {
			if name, ok := e.(string); ok {
				counts[name]++
			}
		}
	}

	for _, event := range model.EventsList {
		_, err := firestoreClient.Collection("events").Doc(event).Set(ctx, map[string]interface{}{
			"eventName": event,
			"teamCount": counts[event],
		}, firestore.MergeAll)
		if err != nil {
			log.Printf("event counts: failed to update %s: %v", event, err)
		}
	}
}
