package redisx

import "time"

const (
	// Cache status booking: booking_status:{booking_id} -> {"status":"..."}
	KeyBookingStatus = "booking_status:%s"

	// Lock reconcile per reference gateway: lock:reconcile:{reference_no}
	KeyReconcileLock = "lock:reconcile:%s"

	// Dedup delivery notifikasi di worker: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache   = 5 * time.Minute
	TTLReconcileLock = 30 * time.Second
	TTLDedup         = 48 * time.Hour
)
