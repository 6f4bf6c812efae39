package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-200 response from the provider.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider API error (status %d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider API error (status %d): %s", e.StatusCode, e.Message)
}

// credentialExpiredCodes is the code family that means the user must re-link.
var credentialExpiredCodes = map[string]struct{}{
	"ITEM_LOGIN_REQUIRED":  {},
	"LOGIN_REQUIRED":       {},
	"INVALID_ACCESS_TOKEN": {},
	"INVALID_CREDENTIALS":  {},
	"ITEM_NOT_FOUND":       {},
}

// IsCredentialExpired reports whether err means the access credential is no
// longer valid and the owning item should be marked expired. Anything else
// (network faults, rate limits, unknown codes, timeouts) is transient and
// must not alter credential lifecycle state.
func IsCredentialExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		return true
	}
	_, ok := credentialExpiredCodes[apiErr.Code]
	return ok
}

// ErrorCode extracts the provider error code from err, or "" when err is not
// an APIError. Used to record the triggering code on an expired item.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
