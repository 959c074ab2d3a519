// Package twinerr defines the wire-stable error taxonomy shared by every
// component of the signaling and cryptographic session layer.
package twinerr

import "fmt"

// Code is a wire-stable error code. Values must never be renumbered once
// shipped: they cross the wire in ack packets and are persisted in logs.
type Code int32

const (
	// SUCCESS indicates the operation completed normally.
	SUCCESS Code = iota

	// Transport errors.
	DISCONNECTED
	SERVICE_UNAVAILABLE
	TIMEOUT

	// Authorization errors.
	NO_PERMISSION
	NOT_AUTHORIZED

	// Crypto errors.
	NO_PRIVATE_KEY
	INVALID_PRIVATE_KEY
	NO_PUBLIC_KEY
	INVALID_PUBLIC_KEY
	NO_SECRET_KEY
	ENCRYPT_ERROR
	DECRYPT_ERROR
	BAD_SIGNATURE
	BAD_SIGNATURE_FORMAT
	BAD_SIGNATURE_MISS_ATTRIBUTE
	BAD_SIGNATURE_NOT_SIGNED_ATTRIBUTE
	BAD_ENCRYPTION_FORMAT
	LIBRARY_ERROR

	// State errors.
	ITEM_NOT_FOUND
	EXPIRED
	DATABASE_ERROR
	FILE_NOT_FOUND
	NO_STORAGE_SPACE

	// BAD_FORMAT is returned by the codec when a packet cannot be parsed.
	BAD_FORMAT
)

var names = map[Code]string{
	SUCCESS:                             "success",
	DISCONNECTED:                        "disconnected",
	SERVICE_UNAVAILABLE:                 "service-unavailable",
	TIMEOUT:                             "timeout",
	NO_PERMISSION:                       "no-permission",
	NOT_AUTHORIZED:                      "not-authorized",
	NO_PRIVATE_KEY:                      "no-private-key",
	INVALID_PRIVATE_KEY:                 "invalid-private-key",
	NO_PUBLIC_KEY:                       "no-public-key",
	INVALID_PUBLIC_KEY:                  "invalid-public-key",
	NO_SECRET_KEY:                       "no-secret-key",
	ENCRYPT_ERROR:                       "encrypt-error",
	DECRYPT_ERROR:                       "decrypt-error",
	BAD_SIGNATURE:                       "bad-signature",
	BAD_SIGNATURE_FORMAT:                "bad-signature-format",
	BAD_SIGNATURE_MISS_ATTRIBUTE:        "bad-signature-miss-attribute",
	BAD_SIGNATURE_NOT_SIGNED_ATTRIBUTE:  "bad-signature-not-signed-attribute",
	BAD_ENCRYPTION_FORMAT:               "bad-encryption-format",
	LIBRARY_ERROR:                       "library-error",
	ITEM_NOT_FOUND:                      "item-not-found",
	EXPIRED:                             "expired",
	DATABASE_ERROR:                      "database-error",
	FILE_NOT_FOUND:                      "file-not-found",
	NO_STORAGE_SPACE:                    "no-storage-space",
	BAD_FORMAT:                          "bad-format",
}
// String implements fmt.Stringer.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// IsSuccess reports whether c represents a successful outcome.
func (c Code) IsSuccess() bool { return c == SUCCESS }

// Error wraps a Code with the underlying cause, if any. Error satisfies the
// error interface so it can flow through normal Go error handling while
// still carrying the wire-stable Code at package boundaries.
type Error struct {
	Code  Code
	Cause error
}

// New returns an *Error for code with no underlying cause.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap returns an *Error for code that records cause for logging.
func Wrap(code Code, cause error) *Error {
	return &Error{Code: code, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// CodeOf extracts the Code carried by err, defaulting to LIBRARY_ERROR for
// any error that did not originate from this package.
func CodeOf(err error) Code {
	if err == nil {
		return SUCCESS
	}
	var te *Error
	if as(err, &te) {
		return te.Code
	}
	return LIBRARY_ERROR
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
