package foodtoken

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tokensCollection      = "foodTokens"
	redemptionsCollection = "foodRedemptions"
	teamsCollection       = "teams"
)

// FirestoreStore backs the token store with the foodTokens and
// foodRedemptions collections. Firestore's transaction machinery provides
// the bounded optimistic retries on write conflict.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&firestoreTx{store: s, tx: tx})
	})
}

func (s *FirestoreStore) Token(ctx context.Context, tokenID string) (*Record, error) {
	doc, err := s.client.Collection(tokensCollection).Doc(tokenID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return recordFromData(doc.Ref.ID, doc.Data()), nil
}

func (s *FirestoreStore) AppendEntry(ctx context.Context, e Entry) (string, error) {
	ref := s.client.Collection(redemptionsCollection).NewDoc()
	_, err := ref.Set(ctx, map[string]interface{}{
		"tokenId":       e.TokenID,
		"teamId":        e.TeamID,
		"regId":         e.RegID,
		"collegeName":   e.CollegeName,
		"redeemedCount": e.RedeemedCount,
		"redeemedAt":    firestore.ServerTimestamp,
		"scannerId":     e.ScannerID,
	})
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) TokenEntries(ctx context.Context, tokenID string) ([]Entry, error) {
	docs, err := s.client.Collection(redemptionsCollection).
		Where("tokenId", "==", tokenID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, entryFromData(doc.Ref.ID, doc.Data()))
	}
	return entries, nil
}

func (s *FirestoreStore) DeleteTokenEntries(ctx context.Context, tokenID string) (int, error) {
	docs, err := s.client.Collection(redemptionsCollection).
		Where("tokenId", "==", tokenID).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	batch := s.client.Batch()
	for _, doc := range docs {
		batch.Delete(doc.Ref)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (s *FirestoreStore) ClearToken(ctx context.Context, tokenID string) error {
	_, err := s.client.Collection(tokensCollection).Doc(tokenID).Update(ctx, []firestore.Update{
		{Path: "redeemed", Value: 0},
		{Path: "redeemedAt", Value: nil},
		{Path: "scannerId", Value: nil},
	})
	if status.Code(err) == codes.NotFound {
		return ErrTokenNotFound
	}
	return err
}

func (s *FirestoreStore) TeamCollege(ctx context.Context, teamID string) (string, error) {
	doc, err := s.client.Collection(teamsCollection).Doc(teamID).Get(ctx)
	if err != nil {
		return "", err
	}
	name, _ := doc.Data()["collegeName"].(string)
	return name, nil
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) GetToken(tokenID string) (*Record, error) {
	doc, err := t.tx.Get(t.store.client.Collection(tokensCollection).Doc(tokenID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return recordFromData(doc.Ref.ID, doc.Data()), nil
}

func (t *firestoreTx) GetEntry(entryID string) (*Entry, error) {
	doc, err := t.tx.Get(t.store.client.Collection(redemptionsCollection).Doc(entryID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	entry := entryFromData(doc.Ref.ID, doc.Data())
	return &entry, nil
}

func (t *firestoreTx) ApplyRedemption(tokenID string, redeemed int, operatorID string) error {
	return t.tx.Update(t.store.client.Collection(tokensCollection).Doc(tokenID), []firestore.Update{
		{Path: "redeemed", Value: redeemed},
		{Path: "redeemedAt", Value: firestore.ServerTimestamp},
		{Path: "scannerId", Value: operatorID},
	})
}

func (t *firestoreTx) SetRedeemed(tokenID string, redeemed int) error {
	return t.tx.Update(t.store.client.Collection(tokensCollection).Doc(tokenID), []firestore.Update{
		{Path: "redeemed", Value: redeemed},
	})
}

func (t *firestoreTx) DeleteEntry(entryID string) error {
	return t.tx.Delete(t.store.client.Collection(redemptionsCollection).Doc(entryID))
}

// Documents written by older dashboards may miss fields entirely, so reads
// go through the raw data map with defensive defaults.
func recordFromData(id string, data map[string]interface{}) *Record {
	rec := &Record{
		TokenID:    id,
		TeamID:     asString(data, "teamId"),
		RegID:      asString(data, "regId"),
		TokenCount: asInt(data, "tokenCount"),
		Redeemed:   asInt(data, "redeemed"),
		ScannerID:  asString(data, "scannerId"),
	}
	if ts, ok := data["redeemedAt"].(time.Time); ok {
		rec.RedeemedAt = &ts
	}
	return rec
}

func entryFromData(id string, data map[string]interface{}) Entry {
	e := Entry{
		EntryID:       id,
		TokenID:       asString(data, "tokenId"),
		TeamID:        asString(data, "teamId"),
		RegID:         asString(data, "regId"),
		CollegeName:   asString(data, "collegeName"),
		RedeemedCount: asInt(data, "redeemedCount"),
		ScannerID:     asString(data, "scannerId"),
	}
	if ts, ok := data["redeemedAt"].(time.Time); ok {
		e.RedeemedAt = ts
	}
	return e
}

func asString(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}

func asInt(data map[string]interface{}, key string) int {
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
