package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/logging"
	"github.com/retain-dental/retain/internal/metrics"
	"github.com/retain-dental/retain/internal/notification"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/wallet"
)

const (
	DefaultLoginDomain = "retain.dental"
	DefaultStepTimeout = 5 * time.Second
	DefaultFallbackPIN = "123456"
)

// Result is the outcome of a successful onboarding.
type Result struct {
	IdentityKey string
	LoginID     string
	// Resumed is set when an earlier attempt left an identity behind and this
	// call completed the missing records.
	Resumed bool
	// AlreadyProvisioned is set when every record already existed and nothing was written.
	AlreadyProvisioned bool
}

// Orchestrator provisions a patient's identity, profile and wallet across the
// identity provider and data store, rolling back on failure and resuming
// interrupted attempts keyed on the login identifier.
type Orchestrator struct {
	identities  IdentityProvider
	store       DataStore
	compensator *Compensator
	logger      *slog.Logger
	metrics     *metrics.Metrics
	notifier    notification.Notifier

	loginDomain string
	stepTimeout time.Duration
	fallbackPIN string
	requirePIN  bool
	concurrent  bool
}

type Option func(o *Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithNotifier(n notification.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithLoginDomain sets the domain appended to mobile numbers to form login identifiers.
func WithLoginDomain(domain string) Option {
	return func(o *Orchestrator) {
		if domain != "" {
			o.loginDomain = domain
		}
	}
}

// WithStepTimeout bounds every backend call, including compensating deletes.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stepTimeout = d
		}
	}
}

// WithFallbackPIN sets the credential used when a request carries no PIN.
func WithFallbackPIN(pin string) Option {
	return func(o *Orchestrator) {
		if pin != "" {
			o.fallbackPIN = pin
		}
	}
}

// WithRequirePIN rejects requests without a PIN instead of applying the fallback.
func WithRequirePIN(require bool) Option {
	return func(o *Orchestrator) {
		o.requirePIN = require
	}
}

// WithConcurrentRecords inserts the profile and wallet in parallel.
func WithConcurrentRecords(enabled bool) Option {
	return func(o *Orchestrator) {
		o.concurrent = enabled
	}
}

// New constructs an Orchestrator.
func New(identities IdentityProvider, store DataStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		identities:  identities,
		store:       store,
		logger:      logging.Discard(),
		loginDomain: DefaultLoginDomain,
		stepTimeout: DefaultStepTimeout,
		fallbackPIN: DefaultFallbackPIN,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.compensator = NewCompensator(identities, store, o.stepTimeout, o.logger, o.metrics)
	return o
}

// Provision onboards a patient. Once validation passes the workflow runs to
// completion or rollback even if ctx is cancelled; each backend call is bounded
// by the step timeout instead.
func (o *Orchestrator) Provision(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := o.provision(ctx, req)
	o.metrics.ObserveProvision(outcome(res, err), start)
	return res, err
}

func (o *Orchestrator) provision(ctx context.Context, req Request) (Result, error) {
	req, err := Validate(req, o.requirePIN)
	if err != nil {
		return Result{}, err
	}

	ctx = context.WithoutCancel(ctx)
	loginID := LoginID(req.Mobile, o.loginDomain)
	logger := o.logger.With("login_id", loginID, "clinic_id", req.ClinicID)

	key, err := bounded(ctx, o.stepTimeout, func(ctx context.Context) (string, error) {
		return o.identities.FindIdentityByLoginID(ctx, loginID)
	})
	switch {
	case err == nil:
		return o.resume(ctx, logger, req, loginID, key)
	case errors.Is(err, identity.ErrNotFound):
	default:
		return Result{}, o.stepFailed(logger, StepLookupIdentity, err)
	}

	key, err = o.createIdentity(ctx, logger, req, loginID)
	if err != nil {
		return Result{}, err
	}

	created := []Resource{{Kind: KindIdentity, IdentityKey: key}}
	if err := o.createRecords(ctx, logger, req, loginID, key, created, true, true); err != nil {
		return Result{}, err
	}

	o.welcome(ctx, logger, req)
	logger.Info("patient onboarded", "identity_key", key)
	return Result{IdentityKey: key, LoginID: loginID}, nil
}

// resume finishes an onboarding whose identity already exists. Records found
// here predate this call and are never compensated.
func (o *Orchestrator) resume(ctx context.Context, logger *slog.Logger, req Request, loginID, key string) (Result, error) {
	logger = logger.With("identity_key", key)

	profile, err := bounded(ctx, o.stepTimeout, func(ctx context.Context) (patient.Profile, error) {
		return o.store.FindProfileByIdentityKey(ctx, key)
	})
	needProfile := false
	switch {
	case err == nil:
		if profile.ClinicID != req.ClinicID {
			logger.Warn("login already registered with another clinic", "existing_clinic_id", profile.ClinicID)
			return Result{}, &ConflictError{LoginID: loginID, Reason: "already registered with another clinic"}
		}
	case errors.Is(err, patient.ErrNotFound):
		needProfile = true
	default:
		return Result{}, o.stepFailed(logger, StepLookupProfile, err)
	}

	_, err = bounded(ctx, o.stepTimeout, func(ctx context.Context) (wallet.Wallet, error) {
		return o.store.FindWalletByIdentityKey(ctx, key)
	})
	needWallet := false
	switch {
	case err == nil:
	case errors.Is(err, wallet.ErrNotFound):
		needWallet = true
	default:
		return Result{}, o.stepFailed(logger, StepLookupWallet, err)
	}

	if !needProfile && !needWallet {
		logger.Info("patient already onboarded")
		return Result{IdentityKey: key, LoginID: loginID, AlreadyProvisioned: true}, nil
	}

	logger.Info("resuming interrupted onboarding", "need_profile", needProfile, "need_wallet", needWallet)
	if err := o.createRecords(ctx, logger, req, loginID, key, nil, needProfile, needWallet); err != nil {
		return Result{}, err
	}

	o.welcome(ctx, logger, req)
	logger.Info("patient onboarded", "resumed", true)
	return Result{IdentityKey: key, LoginID: loginID, Resumed: true}, nil
}

func (o *Orchestrator) createIdentity(ctx context.Context, logger *slog.Logger, req Request, loginID string) (string, error) {
	credential := req.PIN
	if credential == "" {
		logger.Warn("no PIN supplied, applying fallback credential")
		o.metrics.IncFallbackCredential()
		credential = o.fallbackPIN
	}
	meta := identity.Metadata{DisplayName: req.Name, Role: identity.RolePatient, ClinicID: req.ClinicID}

	key, err := bounded(ctx, o.stepTimeout, func(ctx context.Context) (string, error) {
		return o.identities.CreateIdentity(ctx, loginID, credential, meta)
	})
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, identity.ErrIdentityExists):
		logger.Warn("login identifier claimed by a concurrent request")
		return "", &ConflictError{LoginID: loginID, Reason: "login identifier already registered"}
	default:
		// A timed out create may still have committed. The identity is not
		// removed here because this call cannot tell it apart from one created
		// by a concurrent request; a retry finds it and resumes.
		return "", o.stepFailed(logger, StepCreateIdentity, err)
	}
}

// createRecords inserts whichever of profile and wallet are missing, after the
// resources in created. On failure everything created by this call is rolled back.
func (o *Orchestrator) createRecords(ctx context.Context, logger *slog.Logger, req Request, loginID, key string, created []Resource, needProfile, needWallet bool) error {
	insertProfile := func() stepOutcome {
		return o.insert(ctx, patient.ErrExists, func(ctx context.Context) error {
			return o.store.InsertProfile(ctx, patient.NewProfile(key, req.ClinicID, req.Name, req.Mobile))
		})
	}
	insertWallet := func() stepOutcome {
		return o.insert(ctx, wallet.ErrExists, func(ctx context.Context) error {
			return o.store.InsertWallet(ctx, wallet.New(key))
		})
	}

	var profileOut, walletOut stepOutcome
	if o.concurrent && needProfile && needWallet {
		var g errgroup.Group
		g.Go(func() error { profileOut = insertProfile(); return nil })
		g.Go(func() error { walletOut = insertWallet(); return nil })
		_ = g.Wait()
	} else {
		if needProfile {
			profileOut = insertProfile()
		}
		if needWallet && profileOut.err == nil && !profileOut.taken {
			walletOut = insertWallet()
		}
	}

	if profileOut.taken || walletOut.taken {
		// Another request is writing records for this identity. It owns the
		// rollback of what it wrote, and what this call wrote stays for the
		// next attempt to find.
		logger.Warn("records written concurrently by another onboarding attempt", "identity_key", key,
			"profile_taken", profileOut.taken, "wallet_taken", walletOut.taken)
		return &ConflictError{LoginID: loginID, Reason: "onboarding already in progress for this login"}
	}

	if profileOut.undo {
		created = append(created, Resource{Kind: KindProfile, IdentityKey: key})
	}
	if walletOut.undo {
		created = append(created, Resource{Kind: KindWallet, IdentityKey: key})
	}

	step, cause := StepInsertProfile, profileOut.err
	if cause == nil {
		step, cause = StepInsertWallet, walletOut.err
	}
	if cause == nil {
		return nil
	}
	if profileOut.err != nil && walletOut.err != nil {
		o.stepFailed(logger, StepInsertWallet, walletOut.err)
	}

	stepErr := o.stepFailed(logger, step, cause)
	if len(created) == 0 {
		return stepErr
	}
	failures := o.compensator.Compensate(ctx, created)
	return &PartialFailureError{
		Step:         step,
		LoginID:      loginID,
		IdentityKey:  key,
		Cause:        stepErr,
		Compensation: failures,
	}
}

type stepOutcome struct {
	// undo is set when the record may exist because of this call and must be
	// removed on rollback. A timed out insert may still have committed.
	undo bool
	// taken is set when the record already existed at insert time.
	taken bool
	err   error
}

func (o *Orchestrator) insert(ctx context.Context, exists error, fn func(context.Context) error) stepOutcome {
	_, err := bounded(ctx, o.stepTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	switch {
	case err == nil:
		return stepOutcome{undo: true}
	case errors.Is(err, exists):
		return stepOutcome{taken: true}
	case errors.Is(err, context.DeadlineExceeded):
		return stepOutcome{undo: true, err: err}
	default:
		return stepOutcome{err: err}
	}
}

func (o *Orchestrator) stepFailed(logger *slog.Logger, step Step, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	o.metrics.IncStepFailure(string(step), timeout)
	logger.Warn("onboarding step failed", "step", step, "timeout", timeout, "error", err)
	if timeout {
		return &UpstreamTimeoutError{Step: step, Timeout: o.stepTimeout, Err: err}
	}
	return &UpstreamFailureError{Step: step, Err: err}
}

func (o *Orchestrator) welcome(ctx context.Context, logger *slog.Logger, req Request) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Send(ctx, notification.Welcome(req.Mobile, req.Name)); err != nil {
		logger.Warn("welcome notification failed", "error", err)
	}
}

func outcome(res Result, err error) string {
	var (
		validation *ValidationError
		conflict   *ConflictError
		partial    *PartialFailureError
		timeout    *UpstreamTimeoutError
	)
	switch {
	case err == nil && res.AlreadyProvisioned:
		return metrics.OutcomeAlreadyProvisioned
	case err == nil && res.Resumed:
		return metrics.OutcomeResumed
	case err == nil:
		return metrics.OutcomeCreated
	case errors.As(err, &validation):
		return metrics.OutcomeValidation
	case errors.As(err, &conflict):
		return metrics.OutcomeConflict
	case errors.As(err, &partial):
		return metrics.OutcomePartialFailure
	case errors.As(err, &timeout):
		return metrics.OutcomeUpstreamTimeout
	default:
		return metrics.OutcomeUpstreamFailure
	}
}
