package registration

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Registration ids are issued in series (INT26001, INT26002, ...) from a
// counter document so two concurrent registrations can never share one.
const regIDStart = 26001

func nextRegID(ctx context.Context, firestoreClient *firestore.Client) (string, error) {
	counterRef := firestoreClient.Collection("counters").Doc("regId")

	var current int64
	err := firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				current = regIDStart
				return tx.Set(counterRef, map[string]interface{}{"next": int64(regIDStart + 1)})
			}
			return err
		}

		next, ok := doc.Data()["next"].(int64)
		if !ok {
			next = regIDStart
		}
		current = next
		return tx.Update(counterRef, []firestore.Update{
			{Path: "next", Value: next + 1},
		})
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("INT%d", current), nil
}
