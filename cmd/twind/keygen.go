package main

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/twinlife/twincall/pkg/crypto"
)

var keygenKind string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a twincode key pair and print its public halves",
	Long: `Generate a fresh key pair of the given kind (x25519-ed25519 or
ecdsa) and print the twincode id it was minted for along with the
base64url-encoded signing and encryption public keys — the same
material a real client would publish on a twincode.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenKind, "kind", "k", "x25519-ed25519", "key kind (x25519-ed25519, ecdsa)")
}

func parseKind(s string) (crypto.Kind, error) {
	switch s {
	case "x25519-ed25519", "":
		return crypto.KindX25519Ed25519, nil
	case "ecdsa":
		return crypto.KindECDSA, nil
	default:
		return 0, fmt.Errorf("unknown key kind %q", s)
	}
}

func runKeygen(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(keygenKind)
	if err != nil {
		return err
	}

	kp, err := crypto.Generate(kind)
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	defer kp.Dispose()

	twincode := uuid.New()
	fmt.Printf("twincode:        %s\n", twincode)
	fmt.Printf("kind:            %s\n", kind)
	fmt.Printf("signing pub:     %s\n", base64.RawURLEncoding.EncodeToString(kp.SigningPublicKey()))
	fmt.Printf("encryption pub:  %s\n", base64.RawURLEncoding.EncodeToString(kp.EncryptionPublicKey()))
	return nil
}
