package utils

import "time"

// SessionCachePrefix is the prefix used for checkout session cache keys.
const SessionCachePrefix = "checkout:"

// SessionCacheTTL is the time-to-live for checkout session entries.
const SessionCacheTTL = 30 * time.Minute

// HandoffCachePrefix is the prefix used for handoff slot keys.
const HandoffCachePrefix = "handoff:"

// HandoffCacheTTL bounds how long a handoff slot may wait for its one read.
const HandoffCacheTTL = 15 * time.Minute

// InFlightLockPrefix is the prefix for per-attempt in-flight payment locks.
const InFlightLockPrefix = "inflight:"

// InFlightLockTTL caps how long an abandoned attempt can stay locked.
const InFlightLockTTL = 2 * time.Minute
