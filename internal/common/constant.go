package common

const (
	// AuthTokenKey is the local storage key holding the bearer token.
	AuthTokenKey = "authToken"

	// AuthUserKey is the local storage key holding the last known profile.
	AuthUserKey = "authUser"

	// OTPLength is the number of digits in a verification code.
	OTPLength = 4

	// APIBasePath prefixes every auth endpoint.
	APIBasePath = "/api/v1/auth"

	// AuthorizationHeader carries "Bearer <token>" on protected requests.
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)
