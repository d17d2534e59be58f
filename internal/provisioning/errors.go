package provisioning

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Step names a backend call made while onboarding a patient.
type Step string

const (
	StepLookupIdentity Step = "lookup_identity"
	StepCreateIdentity Step = "create_identity"
	StepLookupProfile  Step = "lookup_profile"
	StepLookupWallet   Step = "lookup_wallet"
	StepInsertProfile  Step = "insert_profile"
	StepInsertWallet   Step = "insert_wallet"
)

// ValidationError reports the first missing or malformed request field.
// No backend has been called when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a login identifier that cannot be provisioned for this
// request, either because another request owns it or because the existing
// records belong to a different clinic.
type ConflictError struct {
	LoginID string
	Reason  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.LoginID, e.Reason)
}

// UpstreamTimeoutError reports a backend call that did not finish within the step timeout.
type UpstreamTimeoutError struct {
	Step    Step
	Timeout time.Duration
	Err     error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Step, e.Timeout)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// UpstreamFailureError reports an explicit rejection from a backend.
type UpstreamFailureError struct {
	Step Step
	Err  error
}

func (e *UpstreamFailureError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *UpstreamFailureError) Unwrap() error { return e.Err }

// CompensationFailure describes a resource that could not be removed while
// rolling back. The resource is left orphaned and needs operator attention.
type CompensationFailure struct {
	Resource    Kind
	IdentityKey string
	Err         error
}

func (f CompensationFailure) Error() string {
	return fmt.Sprintf("undo %s %s: %v", f.Resource, f.IdentityKey, f.Err)
}

// PartialFailureError is returned when a step failed after this invocation had
// already created resources. Cause is the step error; Compensation lists the
// resources that could not be rolled back (empty when the rollback was clean).
type PartialFailureError struct {
	Step         Step
	LoginID      string
	IdentityKey  string
	Cause        error
	Compensation []CompensationFailure
}

func (e *PartialFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "onboarding %s did not complete: %v", e.LoginID, e.Cause)
	if len(e.Compensation) == 0 {
		b.WriteString("; rolled back")
		return b.String()
	}
	b.WriteString("; rollback incomplete:")
	for _, f := range e.Compensation {
		b.WriteString(" ")
		b.WriteString(f.Error())
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }

// Timeout reports whether the failing step timed out.
func (e *PartialFailureError) Timeout() bool {
	var timeout *UpstreamTimeoutError
	return errors.As(e.Cause, &timeout)
}

// RolledBack reports whether every created resource was removed.
func (e *PartialFailureError) RolledBack() bool {
	return len(e.Compensation) == 0
}
