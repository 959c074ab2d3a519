// Package config collects the tunable constants named in spec §4.8
// and §4.9 as typed values with defaults, using a WithDefaults()
// convention of one struct per subsystem rather than a single global
// options blob.
package config

import "time"

// SecretParams tunes KeyStore secret rotation (spec §4.5).
type SecretParams struct {
	// SecretRenewDelay is the age at which a secret_update_date marks
	// SessionKeyPair.needs_renew. 30 days in production.
	SecretRenewDelay time.Duration

	// NonceLeaseSize is the number of nonce_sequence values reserved per
	// KeyStore.load_twincode_key_with_secret call.
	NonceLeaseSize uint64

	// CASRetries bounds the read/compute/CAS retry loop before a mutation
	// surfaces DATABASE_ERROR.
	CASRetries int
}

// WithDefaults fills zero fields with the spec's production defaults.
func (p SecretParams) WithDefaults() SecretParams {
	if p.SecretRenewDelay == 0 {
		p.SecretRenewDelay = 30 * 24 * time.Hour
	}
	if p.NonceLeaseSize == 0 {
		p.NonceLeaseSize = 32
	}
	if p.CASRetries == 0 {
		p.CASRetries = 5
	}
	return p
}

// SessionParams tunes SessionSM timing (spec §4.8).
type SessionParams struct {
	// PingInterval is the silence period after which a session-ping is
	// issued. 30s default.
	PingInterval time.Duration

	// MaxIQRetries bounds retries for every IQ except transport-info,
	// with exponential backoff between attempts.
	MaxIQRetries int

	// RetryBaseDelay is the initial backoff interval before the first
	// retry of a failed IQ.
	RetryBaseDelay time.Duration
}

// WithDefaults fills zero fields with the spec's production defaults.
func (p SessionParams) WithDefaults() SessionParams {
	if p.PingInterval == 0 {
		p.PingInterval = 30 * time.Second
	}
	if p.MaxIQRetries == 0 {
		p.MaxIQRetries = 3
	}
	if p.RetryBaseDelay == 0 {
		p.RetryBaseDelay = 500 * time.Millisecond
	}
	return p
}

// OrchestratorParams tunes Orchestrator timing (spec §4.9).
type OrchestratorParams struct {
	// BackgroundDisconnectDelay is how long the connection is kept up
	// after entering BACKGROUND with nothing holding it open.
	BackgroundDisconnectDelay time.Duration

	// WakeupPushMinForeground is the minimum time WAKEUP_PUSH grants
	// before the orchestrator may disconnect.
	WakeupPushMinForeground time.Duration

	// AlarmServiceBackgroundDelay holds a bound for WAKEUP_ALARM runs.
	// The Orchestrator does not read it: an alarm run held open by a
	// VoIP lock or a MESSAGE job has no upper bound.
	AlarmServiceBackgroundDelay time.Duration

	// AlarmProbeInterval is how long a WAKEUP_ALARM run keeps the
	// connection up when nothing holds it, before disconnecting.
	AlarmProbeInterval time.Duration

	// ReconnectDelayWithPush is the long-delay periodic reconnect job
	// interval when push notifications are available.
	ReconnectDelayWithPush time.Duration

	// ReconnectDelayWithoutPush is the long-delay periodic reconnect job
	// interval when push notifications are unavailable.
	ReconnectDelayWithoutPush time.Duration

	// MinReconnectDelay is the floor applied to any computed reconnect
	// delay.
	MinReconnectDelay time.Duration

	// LeaseQuiescence is how long a reference-counted resource lease is
	// held after its count drops to zero, to coalesce bursts of
	// acquire/release calls into a single OS-level acquisition.
	LeaseQuiescence time.Duration
}

// WithDefaults fills zero fields with the spec's production defaults.
func (p OrchestratorParams) WithDefaults() OrchestratorParams {
	if p.BackgroundDisconnectDelay == 0 {
		p.BackgroundDisconnectDelay = 10 * time.Second
	}
	if p.WakeupPushMinForeground == 0 {
		p.WakeupPushMinForeground = 4 * time.Second
	}
	if p.AlarmServiceBackgroundDelay == 0 {
		p.AlarmServiceBackgroundDelay = 25 * time.Second
	}
	if p.AlarmProbeInterval == 0 {
		p.AlarmProbeInterval = 1500 * time.Millisecond
	}
	if p.ReconnectDelayWithPush == 0 {
		p.ReconnectDelayWithPush = 2 * time.Hour
	}
	if p.ReconnectDelayWithoutPush == 0 {
		p.ReconnectDelayWithoutPush = 30 * time.Minute
	}
	if p.MinReconnectDelay == 0 {
		p.MinReconnectDelay = 10 * time.Minute
	}
	if p.LeaseQuiescence == 0 {
		p.LeaseQuiescence = time.Second
	}
	return p
}

// SdpParams tunes SdpCodec thresholds (spec §4.2).
type SdpParams struct {
	// CompressionThreshold is the minimum plaintext length (bytes) before
	// compress(sdp) is attempted.
	CompressionThreshold int
}

// WithDefaults fills zero fields with the spec's production defaults.
func (p SdpParams) WithDefaults() SdpParams {
	if p.CompressionThreshold == 0 {
		p.CompressionThreshold = 256
	}
	return p
}
