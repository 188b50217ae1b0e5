package foodtoken

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RedemptionResult is what the scan pipeline displays after a successful
// redemption.
type RedemptionResult struct {
	CollegeName      string `json:"collegeName"`
	TotalTokens      int    `json:"totalTokens"`
	RedeemedThisScan int    `json:"redeemedThisScan"`
	RemainingAfter   int    `json:"remainingAfter"`
}

// ReversalResult reports what a reversal restored.
type ReversalResult struct {
	TokenID       string `json:"tokenId"`
	Restored      int    `json:"restored"`
	OrphanedEntry bool   `json:"orphanedEntry"`
}

// ResetResult reports the legacy reset path outcome.
type ResetResult struct {
	TokenID        string `json:"tokenId"`
	EntriesDeleted int    `json:"entriesDeleted"`
}

// Engine owns every mutation of the redeemed counter. It carries no
// authorization checks; callers gate the reversal paths on the admin
// delete toggle before invoking them.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Redeem runs the atomic read-check-increment for one scanned token and
// consumes every remaining unit in a single scan. The ledger append is a
// follow-up write: if it fails the decrement stands and the failure is
// only logged.
func (e *Engine) Redeem(ctx context.Context, teamID, tokenID, operatorID string) (*RedemptionResult, error) {
	var (
		total       int
		newRedeemed int
		redeemCount int
		regID       string
	)

	err := e.store.RunAtomic(ctx, func(tx Tx) error {
		rec, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}

		remaining := rec.Remaining()
		if remaining <= 0 {
			return ErrLimitExceeded
		}

		// Redeem-all policy: one scan consumes the whole balance.
		redeemCount = remaining
		newRedeemed = rec.TokenCount
		total = rec.TokenCount
		regID = rec.RegID

		return tx.ApplyRedemption(tokenID, newRedeemed, operatorID)
	})
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrLimitExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	collegeName := "Unknown"
	if teamID != "" {
		if name, err := e.store.TeamCollege(ctx, teamID); err == nil && name != "" {
			collegeName = name
		}
	}

	entry := Entry{
		TokenID:       tokenID,
		TeamID:        teamID,
		RegID:         regID,
		CollegeName:   collegeName,
		RedeemedCount: redeemCount,
		RedeemedAt:    e.now(),
		ScannerID:     operatorID,
	}
	if _, err := e.store.AppendEntry(ctx, entry); err != nil {
		// The tokens were legitimately consumed; an under-counted
		// ledger is preferable to rolling back the decrement.
		log.Printf("food token %s: ledger append failed after redemption: %v", tokenID, err)
	}

	return &RedemptionResult{
		CollegeName:      collegeName,
		TotalTokens:      total,
		RedeemedThisScan: redeemCount,
		RemainingAfter:   total - newRedeemed,
	}, nil
}

// Reverse deletes a ledger entry and restores its redeemed count to the
// token record in one transaction. The counter is clamped at zero so a
// double reversal or prior manual correction cannot drive it negative.
func (e *Engine) Reverse(ctx context.Context, entryID string) (*ReversalResult, error) {
	result := &ReversalResult{}

	err := e.store.RunAtomic(ctx, func(tx Tx) error {
		// The store may retry the closure on conflict; state from an
		// abandoned attempt must not leak into the final result.
		*result = ReversalResult{}

		entry, err := tx.GetEntry(entryID)
		if err != nil {
			return err
		}
		result.TokenID = entry.TokenID

		if entry.TokenID == "" || entry.RedeemedCount <= 0 {
			// Nothing to compensate, just drop the record.
			result.OrphanedEntry = true
			return tx.DeleteEntry(entryID)
		}

		rec, err := tx.GetToken(entry.TokenID)
		if err != nil {
			if errors.Is(err, ErrTokenNotFound) {
				result.OrphanedEntry = true
				return tx.DeleteEntry(entryID)
			}
			return err
		}

		newRedeemed := rec.Redeemed - entry.RedeemedCount
		if newRedeemed < 0 {
			newRedeemed = 0
		}
		result.Restored = rec.Redeemed - newRedeemed

		if err := tx.SetRedeemed(entry.TokenID, newRedeemed); err != nil {
			return err
		}
		return tx.DeleteEntry(entryID)
	})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return result, nil
}

// ResetToken is the legacy reset path for token records that predate the
// ledger: zero the counter, clear the audit fields and remove any
// orphaned entries still referencing the token.
func (e *Engine) ResetToken(ctx context.Context, tokenID string) (*ResetResult, error) {
	if _, err := e.store.Token(ctx, tokenID); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := e.store.ClearToken(ctx, tokenID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	deleted, err := e.store.DeleteTokenEntries(ctx, tokenID)
	if err != nil {
		log.Printf("food token %s: failed to delete orphaned ledger entries: %v", tokenID, err)
	}

	return &ResetResult{TokenID: tokenID, EntriesDeleted: deleted}, nil
}
