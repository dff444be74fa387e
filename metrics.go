package portalcore

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by portalcore APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricAuthRequestSuccess is an exported constant or variable used by the customer portal core.
	MetricAuthRequestSuccess MetricID = iota
	// MetricAuthRequestFailure is an exported constant or variable used by the customer portal core.
	MetricAuthRequestFailure
	// MetricSessionRehydrated is an exported constant or variable used by the customer portal core.
	MetricSessionRehydrated
	// MetricSessionResolutionFailed is an exported constant or variable used by the customer portal core.
	MetricSessionResolutionFailed
	// MetricSessionLogout is an exported constant or variable used by the customer portal core.
	MetricSessionLogout
	// MetricSessionTokenIssued is an exported constant or variable used by the customer portal core.
	MetricSessionTokenIssued
	// MetricStatusReloadSuccess is an exported constant or variable used by the customer portal core.
	MetricStatusReloadSuccess
	// MetricStatusReloadFailure is an exported constant or variable used by the customer portal core.
	MetricStatusReloadFailure
	// MetricModalOpened is an exported constant or variable used by the customer portal core.
	MetricModalOpened
	// MetricModalClosed is an exported constant or variable used by the customer portal core.
	MetricModalClosed
	// MetricStaleCompletionDropped is an exported constant or variable used by the customer portal core.
	MetricStaleCompletionDropped
	// MetricMutationFailure is an exported constant or variable used by the customer portal core.
	MetricMutationFailure
	// MetricSMSEnrolled is an exported constant or variable used by the customer portal core.
	MetricSMSEnrolled
	// MetricTOTPEnrolled is an exported constant or variable used by the customer portal core.
	MetricTOTPEnrolled
	// MetricU2FRegistered is an exported constant or variable used by the customer portal core.
	MetricU2FRegistered
	// MetricBackupCodesGenerated is an exported constant or variable used by the customer portal core.
	MetricBackupCodesGenerated
	// MetricBackupCodesConfirmed is an exported constant or variable used by the customer portal core.
	MetricBackupCodesConfirmed
	// MetricTwoFactorDisabled is an exported constant or variable used by the customer portal core.
	MetricTwoFactorDisabled
	// MetricMechanismDeleted is an exported constant or variable used by the customer portal core.
	MetricMechanismDeleted
	// MetricIPRuleAdded is an exported constant or variable used by the customer portal core.
	MetricIPRuleAdded
	// MetricIPRuleDeleted is an exported constant or variable used by the customer portal core.
	MetricIPRuleDeleted
	// MetricPasswordChangeRequested is an exported constant or variable used by the customer portal core.
	MetricPasswordChangeRequested
	// MetricReloadLatency is an exported constant or variable used by the customer portal core.
	MetricReloadLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by portalcore APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by portalcore APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics may return an error when input validation, dependency calls, or security checks fail.
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled may return an error when input validation, dependency calls, or security checks fail.
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
//
// LatencyEnabled may return an error when input validation, dependency calls, or security checks fail.
// LatencyEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe may return an error when input validation, dependency calls, or security checks fail.
// Observe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricReloadLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value describes the value operation and its observable behavior.
//
// Value may return an error when input validation, dependency calls, or security checks fail.
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricReloadLatency].buckets[i])
		}
		s.Histograms[MetricReloadLatency] = buckets
	}

	return s
}

// bucketIndex maps a duration to one of the 8 fixed latency buckets
// (≤5ms, ≤10ms, ≤25ms, ≤50ms, ≤100ms, ≤250ms, ≤500ms, +Inf).
func bucketIndex(d time.Duration) int {
	switch {
	case d <= 5*time.Millisecond:
		return 0
	case d <= 10*time.Millisecond:
		return 1
	case d <= 25*time.Millisecond:
		return 2
	case d <= 50*time.Millisecond:
		return 3
	case d <= 100*time.Millisecond:
		return 4
	case d <= 250*time.Millisecond:
		return 5
	case d <= 500*time.Millisecond:
		return 6
	default:
		return 7
	}
}
