package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/chainkeeper/internal/txtracker"

	"github.com/redis/go-redis/v9"
)

const (
	// txtrackerKeyPrefix is the Redis key namespace for reconciliation
	// claims. All keys are prefixed with this value.
	txtrackerKeyPrefix = "txtracker"

	// txtrackerClaimDone is the terminal value stored in Redis to indicate
	// that a transaction has already been reconciled to a final status.
	txtrackerClaimDone = "done"

	// txtrackerClaimTTL bounds how long a crashed reconciler can hold a
	// claim before another surface may retry.
	txtrackerClaimTTL = 30 * time.Second
)

// txtrackerClaimKey builds the Redis key tracking the reconciliation claim
// of one transaction on one chain.
func txtrackerClaimKey(chainID, txID string) string {
	return fmt.Sprintf("%s:claim:%s:%s", txtrackerKeyPrefix, chainID, txID)
}

// Claim attempts to take exclusive rights to reconcile a transaction.
//
// Behavior:
//   - If the key is already marked as "done", it returns ErrAlreadyFinished.
//   - If the key exists but is not "done", it returns ErrStillInProgress.
//   - Otherwise, it sets an empty string value with TTL to reserve the claim.
//
// The TTL means a reconciler that crashes mid-flight only delays the
// transaction by one claim window, never strands it.
//
// Returns:
//   - nil if the claim is successful.
//   - txtracker.ErrAlreadyFinished if the transaction was already finalized.
//   - txtracker.ErrStillInProgress if another surface is handling it.
//   - any other error if the Redis operation fails.
func (s *client) Claim(ctx context.Context, chainID, txID string) error {
	key := txtrackerClaimKey(chainID, txID)

	val, err := s.conn.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if val == txtrackerClaimDone {
		return txtracker.ErrAlreadyFinished
	}

	ok, err := s.conn.SetNX(ctx, key, "", txtrackerClaimTTL).Result()
	if err != nil {
		return err
	}

	if !ok {
		return txtracker.ErrStillInProgress
	}

	return nil
}

// MarkComplete marks the transaction as reconciled by setting the Redis key
// value to "done" with no expiration, so no surface reprocesses it.
func (s *client) MarkComplete(ctx context.Context, chainID, txID string) error {
	key := txtrackerClaimKey(chainID, txID)
	return s.conn.Set(ctx, key, txtrackerClaimDone, 0).Err()
}

// Ensure the client satisfies the IdempotencyGuard interface at compile time.
var _ txtracker.IdempotencyGuard = new(client)
