package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/metrics"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/wallet"
)

// Kind identifies a resource created during onboarding.
type Kind string

const (
	KindIdentity Kind = "identity"
	KindProfile  Kind = "profile"
	KindWallet   Kind = "wallet"
)

// Resource is a record created by the current invocation. All three kinds
// are addressed by the identity key.
type Resource struct {
	Kind        Kind
	IdentityKey string
}

// Compensator removes resources created by a failed onboarding attempt.
type Compensator struct {
	identities IdentityProvider
	store      DataStore
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewCompensator builds a compensator whose deletes are each bounded by timeout.
func NewCompensator(identities IdentityProvider, store DataStore, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Compensator {
	return &Compensator{identities: identities, store: store, timeout: timeout, logger: logger, metrics: m}
}

// Compensate deletes created in reverse creation order. Every resource is
// attempted regardless of earlier failures; a resource that is already gone
// counts as undone. The returned slice lists what could not be removed.
func (c *Compensator) Compensate(ctx context.Context, created []Resource) []CompensationFailure {
	ctx = context.WithoutCancel(ctx)

	var failures []CompensationFailure
	for i := len(created) - 1; i >= 0; i-- {
		res := created[i]
		err := c.undo(ctx, res)
		c.metrics.IncCompensation(string(res.Kind), err == nil)
		if err != nil {
			c.logger.Error("compensation failed, resource orphaned",
				"resource", res.Kind, "identity_key", res.IdentityKey, "error", err)
			failures = append(failures, CompensationFailure{Resource: res.Kind, IdentityKey: res.IdentityKey, Err: err})
			continue
		}
		c.logger.Info("compensated", "resource", res.Kind, "identity_key", res.IdentityKey)
	}
	return failures
}

func (c *Compensator) undo(ctx context.Context, res Resource) error {
	var (
		del      func(context.Context, string) error
		notFound error
	)
	switch res.Kind {
	case KindIdentity:
		del, notFound = c.identities.DeleteIdentity, identity.ErrNotFound
	case KindProfile:
		del, notFound = c.store.DeleteProfile, patient.ErrNotFound
	case KindWallet:
		del, notFound = c.store.DeleteWallet, wallet.ErrNotFound
	default:
		return errors.New("unknown resource kind " + string(res.Kind))
	}

	_, err := bounded(ctx, c.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, del(ctx, res.IdentityKey)
	})
	if err == nil || errors.Is(err, notFound) {
		return nil
	}
	return err
}

// bounded runs fn with a deadline of timeout and returns once either fn
// finishes or the deadline passes, even if fn ignores its context.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := fn(stepCtx)
		done <- result{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-stepCtx.Done():
		select {
		case r := <-done:
			return r.val, r.err
		default:
		}
		var zero T
		return zero, stepCtx.Err()
	}
}
