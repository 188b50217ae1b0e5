package foodtoken

import (
	"errors"
)

var (
	// ErrTokenNotFound means the scanned token id has no record.
	ErrTokenNotFound = errors.New("food token not found")
	// ErrLimitExceeded means every token on the record is already redeemed.
	ErrLimitExceeded = errors.New("all tokens already redeemed")
	// ErrEntryNotFound means the redemption entry was already deleted.
	ErrEntryNotFound = errors.New("redemption entry not found")
	// ErrTransactionFailed wraps store failures after retries are exhausted.
	ErrTransactionFailed = errors.New("redemption transaction failed")
)
