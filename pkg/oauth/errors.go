package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrInvalidRedirectURI is returned when the redirect URI is empty or cannot be parsed.
	ErrInvalidRedirectURI = errors.New("oauth: invalid redirect URI")

	// ErrMissingProvider is returned when a client is constructed without a provider.
	ErrMissingProvider = errors.New("oauth: missing provider")

	// ErrInvalidProviderConfig is returned when a config-driven provider lacks
	// a name or has an invalid endpoint.
	ErrInvalidProviderConfig = errors.New("oauth: invalid provider configuration")

	// ErrInvalidOption is returned when a configuration value is outside its allowed set.
	ErrInvalidOption = errors.New("oauth: invalid option")

	// ErrUnknownOption is returned by DecodeConfigStrict for keys that are not part of Config.
	ErrUnknownOption = errors.New("oauth: unknown option")

	// ErrInvalidGrant is returned when a grant is neither a known name nor a valid Grant value.
	ErrInvalidGrant = errors.New("oauth: invalid grant")

	// ErrReservedParameter is returned when token request params try to override
	// client_id, client_secret, redirect_uri or grant_type.
	ErrReservedParameter = errors.New("oauth: reserved parameter")

	// ErrMissingParameter is returned when a grant-specific required parameter is absent.
	ErrMissingParameter = errors.New("oauth: missing required parameter")

	// ErrMalformedResponse is returned when a response body cannot be parsed
	// in the configured format.
	ErrMalformedResponse = errors.New("oauth: malformed response")

	// ErrUnsupportedFormat is returned when decoding with an unknown response format.
	ErrUnsupportedFormat = errors.New("oauth: unsupported response format")

	// ErrIdentityProvider matches every *IdentityProviderError via errors.Is.
	ErrIdentityProvider = errors.New("oauth: identity provider error")

	// ErrMissingToken is returned when a successful response carries no access token.
	ErrMissingToken = errors.New("oauth: missing access token")

	// ErrMissingRefreshToken is returned when a refresh is attempted without a refresh token.
	ErrMissingRefreshToken = errors.New("oauth: missing refresh token")

	// ErrStateMismatch is returned when the state received on callback is unknown or differs.
	ErrStateMismatch = errors.New("oauth: state mismatch")

	// ErrNilResponse is returned when the HTTP transport gets a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when an HTTP request to the provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the provider answers with a server error status.
	ErrRequestFailed = errors.New("oauth: request returned server error status")
)

// IdentityProviderError is a provider-declared failure found in a decoded response.
type IdentityProviderError struct {
	Response Response
	Message  string
	Code     string
}

// NewIdentityProviderError builds an IdentityProviderError. The code is rendered
// with fmt so numeric and string provider codes are both accepted.
func NewIdentityProviderError(message string, code any, resp Response) *IdentityProviderError {
	e := &IdentityProviderError{Message: message, Response: resp}
	if code != nil {
		e.Code = fmt.Sprint(code)
	}
	return e
}

func (e *IdentityProviderError) Error() string {
	if e.Code == "" {
		return "oauth: identity provider error: " + e.Message
	}
	return fmt.Sprintf("oauth: identity provider error: %s (code %s)", e.Message, e.Code)
}

// Is reports whether target is ErrIdentityProvider.
func (e *IdentityProviderError) Is(target error) bool {
	return target == ErrIdentityProvider
}

// ErrorKind classifies errors returned by the client into a fixed taxonomy.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidGrant
	KindReservedParameter
	KindMissingParameter
	KindMalformedResponse
	KindIdentityProvider
	KindMissingToken
	KindStateMismatch
	KindTransport
	KindOther
)

var kindNames = map[ErrorKind]string{
	KindNone:              "none",
	KindInvalidGrant:      "invalid_grant",
	KindReservedParameter: "reserved_parameter",
	KindMissingParameter:  "missing_parameter",
	KindMalformedResponse: "malformed_response",
	KindIdentityProvider:  "identity_provider",
	KindMissingToken:      "missing_token",
	KindStateMismatch:     "state_mismatch",
	KindTransport:         "transport",
	KindOther:             "other",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// KindOf returns the taxonomy kind of err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidGrant):
		return KindInvalidGrant
	case errors.Is(err, ErrReservedParameter):
		return KindReservedParameter
	case errors.Is(err, ErrMissingParameter):
		return KindMissingParameter
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrUnsupportedFormat):
		return KindMalformedResponse
	case errors.Is(err, ErrIdentityProvider):
		return KindIdentityProvider
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrMissingRefreshToken):
		return KindMissingToken
	case errors.Is(err, ErrStateMismatch):
		return KindStateMismatch
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrRequestFailed), errors.Is(err, ErrNilResponse):
		return KindTransport
	default:
		return KindOther
	}
}
