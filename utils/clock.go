package utils

import (
	"time"
)

// Now returns the current time in UTC. Tests override it to control expiry
// windows.
var Now = func() time.Time { return time.Now().UTC() }
