package common

import "time"

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries a per-request identifier for log correlation.
const RequestIDHeaderName = "X-Request-Id"

// TokenRefreshWindow is how close to expiry a session is considered
// "expiring soon" and worth refreshing proactively.
const TokenRefreshWindow = 5 * time.Minute
