package food

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
)

// ConservationAuditJob recomputes the ledger sum for every token record
// and logs any drift from the redeemed counter. Drift is expected when a
// ledger append failed after a committed redemption; the audit makes
// that visible without mutating anything.
func ConservationAuditJob(firestoreClient *firestore.Client) {
	ctx := context.Background()

	entryDocs, err := firestoreClient.Collection("foodRedemptions").Documents(ctx).GetAll()
	if err != nil {
		log.Printf("ledger audit: failed to load redemptions: %v", err)
		return
	}

	ledgerSums := make(map[string]int)
	for _, doc := range entryDocs {
		data := doc.Data()
		tokenID, _ := data["tokenId"].(string)
		if tokenID == "" {
			log.Printf("ledger audit: entry %s has no tokenId", doc.Ref.ID)
			continue
		}
		ledgerSums[tokenID] += intField(data, "redeemedCount")
	}

	tokenDocs, err := firestoreClient.Collection("foodTokens").Documents(ctx).GetAll()
	if err != nil {
		log.Printf("ledger audit: failed to load tokens: %v", err)
		return
	}

	drifted := 0
	for _, doc := range tokenDocs {
		data := doc.Data()
		tokenCount := intField(data, "tokenCount")
		redeemed := intField(data, "redeemed")

		if redeemed < 0 || redeemed > tokenCount {
			log.Printf("ledger audit: token %s violates invariant: redeemed=%d tokenCount=%d",
				doc.Ref.ID, redeemed, tokenCount)
		}
		if sum := ledgerSums[doc.Ref.ID]; sum != redeemed {
			drifted++
			log.Printf("ledger audit: token %s: ledger sum %d != redeemed %d",
				doc.Ref.ID, sum, redeemed)
		}
	}

	log.Printf("ledger audit: checked %d tokens, %d with ledger drift", len(tokenDocs), drifted)
}
