package foodtoken

import (
	"context"
	"time"
)

// Record is the per-team food token aggregate. Redeemed never exceeds
// TokenCount; the only writers are Engine.Redeem and the reversal paths.
type Record struct {
	TokenID    string     `json:"tokenId"`
	TeamID     string     `json:"teamId"`
	RegID      string     `json:"regId"`
	TokenCount int        `json:"tokenCount"`
	Redeemed   int        `json:"redeemed"`
	RedeemedAt *time.Time `json:"redeemedAt,omitempty"`
	ScannerID  string     `json:"scannerId,omitempty"`
}

// Remaining is the unredeemed balance.
func (r *Record) Remaining() int {
	return r.TokenCount - r.Redeemed
}

// Entry is one append-only ledger row for a successful scan.
type Entry struct {
	EntryID       string    `json:"entryId"`
	TokenID       string    `json:"tokenId"`
	TeamID        string    `json:"teamId"`
	RegID         string    `json:"regId"`
	CollegeName   string    `json:"collegeName"`
	RedeemedCount int       `json:"redeemedCount"`
	RedeemedAt    time.Time `json:"redeemedAt"`
	ScannerID     string    `json:"scannerId"`
}

// Tx is the read-modify-write surface available inside one atomic
// transaction. All reads happen before writes (Firestore discipline).
type Tx interface {
	GetToken(tokenID string) (*Record, error)
	GetEntry(entryID string) (*Entry, error)
	// ApplyRedemption sets redeemed along with the audit fields
	// (redeemedAt, scannerId).
	ApplyRedemption(tokenID string, redeemed int, operatorID string) error
	// SetRedeemed writes just the counter, used by the reversal engine.
	SetRedeemed(tokenID string, redeemed int) error
	DeleteEntry(entryID string) error
}

// Store is the token store consumed by the engine. RunAtomic must
// serialize concurrent calls touching the same record so the invariant
// 0 <= redeemed <= tokenCount holds under simultaneous scanners.
type Store interface {
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error
	Token(ctx context.Context, tokenID string) (*Record, error)
	// AppendEntry is the non-transactional ledger follow-up write.
	AppendEntry(ctx context.Context, e Entry) (string, error)
	TokenEntries(ctx context.Context, tokenID string) ([]Entry, error)
	DeleteTokenEntries(ctx context.Context, tokenID string) (int, error)
	// ClearToken resets redeemed to zero and nulls the audit fields
	// (legacy reset path for records that predate the ledger).
	ClearToken(ctx context.Context, tokenID string) error
	// TeamCollege resolves the college name for display. Callers treat
	// failures as "Unknown", never as a redemption failure.
	TeamCollege(ctx context.Context, teamID string) (string, error)
}
