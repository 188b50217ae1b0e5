package foodtoken

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory Store. RunAtomic serializes through a
// mutex, matching the serializability the real store provides.
type memoryStore struct {
	mu      sync.Mutex
	tokens  map[string]*Record
	entries map[string]*Entry
	nextID  int

	colleges map[string]string

	appendErr error
	appended  []Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tokens:   make(map[string]*Record),
		entries:  make(map[string]*Entry),
		colleges: make(map[string]string),
	}
}

type memoryTx struct {
	store *memoryStore
}

func (s *memoryStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memoryTx{store: s})
}

func (tx *memoryTx) GetToken(tokenID string) (*Record, error) {
	rec, ok := tx.store.tokens[tokenID]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *rec
	return &copied, nil
}

func (tx *memoryTx) GetEntry(entryID string) (*Entry, error) {
	entry, ok := tx.store.entries[entryID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (tx *memoryTx) ApplyRedemption(tokenID string, redeemed int, operatorID string) error {
	rec, ok := tx.store.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	now := time.Now()
	rec.Redeemed = redeemed
	rec.RedeemedAt = &now
	rec.ScannerID = operatorID
	return nil
}

func (tx *memoryTx) SetRedeemed(tokenID string, redeemed int) error {
	rec, ok := tx.store.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	rec.Redeemed = redeemed
	return nil
}

func (tx *memoryTx) DeleteEntry(entryID string) error {
	delete(tx.store.entries, entryID)
	return nil
}

func (s *memoryStore) Token(ctx context.Context, tokenID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[tokenID]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *memoryStore) AppendEntry(ctx context.Context, e Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return "", s.appendErr
	}
	s.nextID++
	id := fmt.Sprintf("entry-%d", s.nextID)
	e.EntryID = id
	s.entries[id] = &e
	s.appended = append(s.appended, e)
	return id, nil
}

func (s *memoryStore) TokenEntries(ctx context.Context, tokenID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []Entry
	for _, e := range s.entries {
		if e.TokenID == tokenID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (s *memoryStore) DeleteTokenEntries(ctx context.Context, tokenID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, e := range s.entries {
		if e.TokenID == tokenID {
			delete(s.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryStore) ClearToken(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	rec.Redeemed = 0
	rec.RedeemedAt = nil
	rec.ScannerID = ""
	return nil
}

func (s *memoryStore) TeamCollege(ctx context.Context, teamID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.colleges[teamID]
	if !ok {
		return "", errors.New("team not found")
	}
	return name, nil
}

func (s *memoryStore) putToken(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[rec.TokenID] = &rec
}

func (s *memoryStore) putEntry(id string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.EntryID = id
	s.entries[id] = &e
}

func (s *memoryStore) token(tokenID string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tokens[tokenID]
}

func TestRedeemConsumesWholeBalance(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", RegID: "INT26001", TokenCount: 4, Redeemed: 1})
	store.colleges["team1"] = "St. Mary's College"

	engine := NewEngine(store)
	result, err := engine.Redeem(context.Background(), "team1", "tok1", "op1")
	require.NoError(t, err)

	require.Equal(t, "St. Mary's College", result.CollegeName)
	require.Equal(t, 4, result.TotalTokens)
	require.Equal(t, 3, result.RedeemedThisScan)
	require.Equal(t, 0, result.RemainingAfter)

	rec := store.token("tok1")
	require.Equal(t, 4, rec.Redeemed)
	require.Equal(t, "op1", rec.ScannerID)
	require.NotNil(t, rec.RedeemedAt)

	require.Len(t, store.appended, 1)
	require.Equal(t, 3, store.appended[0].RedeemedCount)
	require.Equal(t, "op1", store.appended[0].ScannerID)
}

func TestRedeemUnknownToken(t *testing.T) {
	engine := NewEngine(newMemoryStore())

	_, err := engine.Redeem(context.Background(), "team1", "missing", "op1")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeemExhaustedTokenIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 2, Redeemed: 2})

	engine := NewEngine(store)
	_, err := engine.Redeem(context.Background(), "team1", "tok1", "op1")
	require.ErrorIs(t, err, ErrLimitExceeded)

	// The failed scan must not touch the record or the ledger.
	require.Equal(t, 2, store.token("tok1").Redeemed)
	require.Empty(t, store.appended)
}

func TestRedeemUnknownCollegeFallsBack(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 1})

	engine := NewEngine(store)
	result, err := engine.Redeem(context.Background(), "team1", "tok1", "op1")
	require.NoError(t, err)
	require.Equal(t, "Unknown", result.CollegeName)
}

func TestConcurrentRedeemsSingleWinner(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 3})

	engine := NewEngine(store)

	var wg sync.WaitGroup
	results := make([]*RedemptionResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Redeem(context.Background(), "team1", "tok1", fmt.Sprintf("op%d", i))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for i := range errs {
		if errs[i] == nil {
			wins++
			require.Equal(t, 3, results[i].RedeemedThisScan)
		} else {
			losses++
			require.ErrorIs(t, errs[i], ErrLimitExceeded)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, losses)
	require.Equal(t, 3, store.token("tok1").Redeemed)
}

func TestRedeemSurvivesLedgerAppendFailure(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 2})
	store.appendErr = errors.New("ledger unavailable")

	engine := NewEngine(store)
	result, err := engine.Redeem(context.Background(), "team1", "tok1", "op1")
	require.NoError(t, err)
	require.Equal(t, 2, result.RedeemedThisScan)

	// The decrement stands even though the ledger write failed.
	require.Equal(t, 2, store.token("tok1").Redeemed)
	require.Empty(t, store.appended)
}

func TestReverseRestoresBalanceAndDeletesEntry(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 5, Redeemed: 5})
	store.putEntry("entry1", Entry{TokenID: "tok1", RedeemedCount: 5})

	engine := NewEngine(store)
	result, err := engine.Reverse(context.Background(), "entry1")
	require.NoError(t, err)

	require.Equal(t, "tok1", result.TokenID)
	require.Equal(t, 5, result.Restored)
	require.False(t, result.OrphanedEntry)
	require.Equal(t, 0, store.token("tok1").Redeemed)

	_, err = engine.Reverse(context.Background(), "entry1")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestReverseClampsAtZero(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 5, Redeemed: 1})
	store.putEntry("entry1", Entry{TokenID: "tok1", RedeemedCount: 5})

	engine := NewEngine(store)
	result, err := engine.Reverse(context.Background(), "entry1")
	require.NoError(t, err)

	// Only one unit was actually outstanding.
	require.Equal(t, 1, result.Restored)
	require.Equal(t, 0, store.token("tok1").Redeemed)
}

func TestReverseOrphanedEntry(t *testing.T) {
	store := newMemoryStore()
	store.putEntry("entry1", Entry{TokenID: "gone", RedeemedCount: 2})

	engine := NewEngine(store)
	result, err := engine.Reverse(context.Background(), "entry1")
	require.NoError(t, err)

	require.True(t, result.OrphanedEntry)
	require.Equal(t, 0, result.Restored)

	entries, err := store.TokenEntries(context.Background(), "gone")
	require.NoError(t, err)
	require.Empty(t, entries)
}

// retryingStore reruns the transaction closure once, discarding the
// first attempt's writes the way a conflicted optimistic transaction
// does, and lets the test mutate state between the attempts.
type retryingStore struct {
	*memoryStore
	betweenAttempts func(*memoryStore)
}

func (s *retryingStore) RunAtomic(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	tokensSnapshot := make(map[string]*Record, len(s.tokens))
	for id, rec := range s.tokens {
		copied := *rec
		tokensSnapshot[id] = &copied
	}
	entriesSnapshot := make(map[string]*Entry, len(s.entries))
	for id, e := range s.entries {
		copied := *e
		entriesSnapshot[id] = &copied
	}

	_ = fn(&memoryTx{store: s.memoryStore})

	s.tokens = tokensSnapshot
	s.entries = entriesSnapshot
	s.mu.Unlock()

	if s.betweenAttempts != nil {
		s.betweenAttempts(s.memoryStore)
	}
	return s.memoryStore.RunAtomic(ctx, fn)
}

func TestReverseRetryDoesNotLeakFirstAttempt(t *testing.T) {
	inner := newMemoryStore()
	inner.putEntry("entry1", Entry{TokenID: "tok1", RedeemedCount: 3})

	// The first attempt sees no token record and takes the orphan path;
	// by the retry the record exists and a normal reversal must win.
	store := &retryingStore{
		memoryStore: inner,
		betweenAttempts: func(s *memoryStore) {
			s.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 3, Redeemed: 3})
		},
	}

	engine := NewEngine(store)
	result, err := engine.Reverse(context.Background(), "entry1")
	require.NoError(t, err)

	require.False(t, result.OrphanedEntry)
	require.Equal(t, 3, result.Restored)
	require.Equal(t, "tok1", result.TokenID)
	require.Equal(t, 0, inner.token("tok1").Redeemed)
}

func TestResetTokenClearsCounterAndLedger(t *testing.T) {
	store := newMemoryStore()
	store.putToken(Record{TokenID: "tok1", TeamID: "team1", TokenCount: 3, Redeemed: 3, ScannerID: "op1"})
	store.putEntry("entry1", Entry{TokenID: "tok1", RedeemedCount: 2})
	store.putEntry("entry2", Entry{TokenID: "tok1", RedeemedCount: 1})
	store.putEntry("other", Entry{TokenID: "tok2", RedeemedCount: 1})

	engine := NewEngine(store)
	result, err := engine.ResetToken(context.Background(), "tok1")
	require.NoError(t, err)
	require.Equal(t, 2, result.EntriesDeleted)

	rec := store.token("tok1")
	require.Equal(t, 0, rec.Redeemed)
	require.Nil(t, rec.RedeemedAt)
	require.Empty(t, rec.ScannerID)

	remaining, err := store.TokenEntries(context.Background(), "tok2")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestResetTokenUnknown(t *testing.T) {
	engine := NewEngine(newMemoryStore())

	_, err := engine.ResetToken(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTokenNotFound)
}
