package provisioning

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retain-dental/retain/internal/logging"
)

func discardLogger() *slog.Logger { return logging.Discard() }

func TestValidateTrimsAndAccepts(t *testing.T) {
	req, err := Validate(Request{ClinicID: " clinic-1 ", Name: " Sarah Lee ", Mobile: " 5551234567 ", PIN: " 4321 "}, false)
	require.NoError(t, err)
	assert.Equal(t, Request{ClinicID: "clinic-1", Name: "Sarah Lee", Mobile: "5551234567", PIN: "4321"}, req)
}

func TestValidateReportsFirstInvalidField(t *testing.T) {
	cases := []struct {
		name       string
		req        Request
		requirePIN bool
		field      string
	}{
		{"clinic before name", Request{Mobile: "5551234567"}, false, "clinicId"},
		{"name before mobile", Request{ClinicID: "c"}, false, "name"},
		{"mobile required", Request{ClinicID: "c", Name: "n"}, false, "mobile"},
		{"mobile letters", Request{ClinicID: "c", Name: "n", Mobile: "555-CALL-NOW"}, false, "mobile"},
		{"mobile too short", Request{ClinicID: "c", Name: "n", Mobile: "12345"}, false, "mobile"},
		{"mobile too long", Request{ClinicID: "c", Name: "n", Mobile: "1234567890123456"}, false, "mobile"},
		{"pin letters", Request{ClinicID: "c", Name: "n", Mobile: "5551234567", PIN: "abcd"}, false, "pin"},
		{"pin too short", Request{ClinicID: "c", Name: "n", Mobile: "5551234567", PIN: "12"}, false, "pin"},
		{"pin required", Request{ClinicID: "c", Name: "n", Mobile: "5551234567"}, true, "pin"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.req, tc.requirePIN)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestValidateAcceptsInternationalMobile(t *testing.T) {
	req, err := Validate(Request{ClinicID: "c", Name: "n", Mobile: "+447700900123"}, false)
	require.NoError(t, err)
	assert.Equal(t, "447700900123", req.Mobile)
	assert.Equal(t, "447700900123@retain.dental", LoginID(req.Mobile, DefaultLoginDomain))
}

func TestMobileWithAndWithoutPlusShareLoginID(t *testing.T) {
	plus, err := Validate(Request{ClinicID: "c", Name: "n", Mobile: "+15551234567"}, false)
	require.NoError(t, err)
	bare, err := Validate(Request{ClinicID: "c", Name: "n", Mobile: "15551234567"}, false)
	require.NoError(t, err)

	assert.Equal(t, LoginID(bare.Mobile, DefaultLoginDomain), LoginID(plus.Mobile, DefaultLoginDomain))
	assert.Equal(t, "15551234567@retain.dental", LoginID("+15551234567", DefaultLoginDomain))
}

func TestLoginID(t *testing.T) {
	assert.Equal(t, "5551234567@retain.dental", LoginID("5551234567", "retain.dental"))
}
