package keystore

import (
	"time"

	"github.com/twinlife/twincall/pkg/crypto"
)

// applyOption mutates sp according to option, per spec §4.4's secret
// rotation state machine. The invariant it preserves: at most one
// USE_* flag is set, and a NEW_x flag may only coexist with USE_y
// where y != x (or with no USE_* at all).
func applyOption(sp *SecretPair, option SecretOption) error {
	switch option {
	case OptionNone:
		return nil

	case CreateSecret:
		secret, err := crypto.RandomBytes(crypto.SymmetricKeySize)
		if err != nil {
			return err
		}
		sp.Secret1 = secret
		sp.Flags = FlagUseSecret1
		sp.UpdateDate = time.Now()
		return nil

	case CreateFirstSecret:
		if sp.Flags.Has(FlagNewSecret1) || sp.Flags.Has(FlagUseSecret1) {
			return nil // idempotent
		}
		if sp.Flags.Has(FlagUseSecret1) || sp.Flags.Has(FlagUseSecret2) {
			return ErrInvalidOption
		}
		secret, err := crypto.RandomBytes(crypto.SymmetricKeySize)
		if err != nil {
			return err
		}
		sp.Secret1 = secret
		sp.Flags |= FlagNewSecret1
		return nil

	case CreateNextSecret:
		switch {
		case sp.Flags.Has(FlagUseSecret1):
			if sp.Flags.Has(FlagNewSecret2) {
				return nil // idempotent
			}
			secret, err := crypto.RandomBytes(crypto.SymmetricKeySize)
			if err != nil {
				return err
			}
			sp.Secret2 = secret
			sp.Flags |= FlagNewSecret2
			return nil
		case sp.Flags.Has(FlagUseSecret2):
			if sp.Flags.Has(FlagNewSecret1) {
				return nil // idempotent
			}
			secret, err := crypto.RandomBytes(crypto.SymmetricKeySize)
			if err != nil {
				return err
			}
			sp.Secret1 = secret
			sp.Flags |= FlagNewSecret1
			return nil
		default:
			return ErrInvalidOption
		}

	default:
		return ErrInvalidOption
	}
}

// validate promotes any pending NEW_SECRETx flag to USE_SECRETx,
// clearing the other USE_* flag, per spec §4.4.
func (sp *SecretPair) validate() {
	switch {
	case sp.Flags.Has(FlagNewSecret1):
		sp.Flags = FlagUseSecret1
		sp.UpdateDate = time.Now()
	case sp.Flags.Has(FlagNewSecret2):
		sp.Flags = FlagUseSecret2
		sp.UpdateDate = time.Now()
	}
}

// needsRenew reports whether the active secret is older than
// renewDelay.
func (sp *SecretPair) needsRenew(renewDelay time.Duration) bool {
	if sp.UpdateDate.IsZero() {
		return false
	}
	return time.Since(sp.UpdateDate) > renewDelay
}
