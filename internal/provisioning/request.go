package provisioning

import (
	"strings"
)

const (
	minMobileDigits = 7
	maxMobileDigits = 15
	minPINDigits    = 4
	maxPINDigits    = 12
)

// Request is an onboarding request as received from a clinic front desk.
type Request struct {
	ClinicID string `json:"clinicId"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	PIN      string `json:"pin,omitempty"`
}

// Validate trims the request and checks required fields in the order
// clinicId, name, mobile, then the optional PIN. It never calls a backend.
// The returned mobile is digits only, so "+15551234567" and "15551234567"
// map to the same login identifier.
func Validate(req Request, requirePIN bool) (Request, error) {
	req = Request{
		ClinicID: strings.TrimSpace(req.ClinicID),
		Name:     strings.TrimSpace(req.Name),
		Mobile:   strings.TrimSpace(req.Mobile),
		PIN:      strings.TrimSpace(req.PIN),
	}

	switch {
	case req.ClinicID == "":
		return Request{}, &ValidationError{Field: "clinicId", Reason: "is required"}
	case req.Name == "":
		return Request{}, &ValidationError{Field: "name", Reason: "is required"}
	case req.Mobile == "":
		return Request{}, &ValidationError{Field: "mobile", Reason: "is required"}
	}

	if !validMobile(req.Mobile) {
		return Request{}, &ValidationError{Field: "mobile", Reason: "must be 7 to 15 digits with an optional leading +"}
	}
	req.Mobile = normalizeMobile(req.Mobile)
	if req.PIN == "" {
		if requirePIN {
			return Request{}, &ValidationError{Field: "pin", Reason: "is required"}
		}
		return req, nil
	}
	if !allDigits(req.PIN) || len(req.PIN) < minPINDigits || len(req.PIN) > maxPINDigits {
		return Request{}, &ValidationError{Field: "pin", Reason: "must be 4 to 12 digits"}
	}
	return req, nil
}

// LoginID derives the identity provider login identifier for a mobile number.
func LoginID(mobile, domain string) string {
	return normalizeMobile(mobile) + "@" + domain
}

func normalizeMobile(mobile string) string {
	return strings.TrimPrefix(strings.TrimSpace(mobile), "+")
}

func validMobile(mobile string) bool {
	digits := strings.TrimPrefix(mobile, "+")
	return allDigits(digits) && len(digits) >= minMobileDigits && len(digits) <= maxMobileDigits
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
