package p2psession

import "fmt"

// Reason is the wire-stable termination reason enum of spec §4.8.
// Values must never be renumbered: they are serialized as a plain
// integer in SessionTerminate packets.
type Reason int32

const (
	ReasonSuccess Reason = iota
	ReasonBusy
	ReasonCancel
	ReasonConnectivityError
	ReasonDecline
	ReasonDisconnected
	ReasonGeneralError
	ReasonGone
	ReasonNotAuthorized
	ReasonRevoked
	ReasonTimeout
	ReasonUnknown
	ReasonTransferDone
	ReasonSchedule
	ReasonMerge
	ReasonNoPrivateKey
	ReasonNoSecretKey
	ReasonDecryptError
	ReasonEncryptError
	ReasonNoPublicKey
	ReasonNotEncrypted
)

var reasonNames = map[Reason]string{
	ReasonSuccess:           "success",
	ReasonBusy:              "busy",
	ReasonCancel:            "cancel",
	ReasonConnectivityError: "connectivity-error",
	ReasonDecline:           "decline",
	ReasonDisconnected:      "disconnected",
	ReasonGeneralError:      "general-error",
	ReasonGone:              "gone",
	ReasonNotAuthorized:     "not-authorized",
	ReasonRevoked:           "revoked",
	ReasonTimeout:           "timeout",
	ReasonUnknown:           "unknown",
	ReasonTransferDone:      "transfer-done",
	ReasonSchedule:          "schedule",
	ReasonMerge:             "merge",
	ReasonNoPrivateKey:      "no-private-key",
	ReasonNoSecretKey:       "no-secret-key",
	ReasonDecryptError:      "decrypt-error",
	ReasonEncryptError:      "encrypt-error",
	ReasonNoPublicKey:       "no-public-key",
	ReasonNotEncrypted:      "not-encrypted",
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reason(%d)", int32(r))
}
