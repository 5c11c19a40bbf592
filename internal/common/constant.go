package common

import "time"

// AccessTokenHeaderName is the metadata key used to carry a principal token
// on outbound requests.
const AccessTokenHeaderName = "access_token"

// WaitForever passed as an acquire timeout blocks until a connection frees
// or the context is cancelled.
const WaitForever time.Duration = -1

// DefaultAcquireTimeout bounds connection acquisition when the caller does
// not pass its own timeout.
const DefaultAcquireTimeout = 5 * time.Second
