// Package sealing encrypts passwords for transmission with RSA-OAEP
// (SHA-256 for both the label hash and MGF1) and base64-encodes the result.
//
// The package is stateless: nothing is retained between calls.
package sealing

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/99minutos/financevault/internal/core/domain"
)

const (
	pemPKCS1Public  = "RSA PUBLIC KEY"
	pemPKIXPublic   = "PUBLIC KEY"
	pemPKCS1Private = "RSA PRIVATE KEY"
)

// EncryptPassword encrypts password under the PEM encoded public key and
// returns the standard base64 encoding of the raw ciphertext. A malformed key
// yields an error wrapping domain.ErrEncryption.
func EncryptPassword(password, publicKeyPEM string) (string, error) {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return "", err
	}

	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, []byte(password), nil)
	if err != nil {
		// Message too long for the modulus.
		return "", fmt.Errorf("%w: %v", domain.ErrEncryption, err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// ParsePublicKey accepts PKCS#1 ("RSA PUBLIC KEY") and PKIX ("PUBLIC KEY")
// blocks holding an RSA key.
func ParsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in public key", domain.ErrEncryption)
	}

	switch block.Type {
	case pemPKCS1Public:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse pkcs1 public key: %v", domain.ErrEncryption, err)
		}
		return pub, nil
	case pemPKIXPublic:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse pkix public key: %v", domain.ErrEncryption, err)
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is %T, want RSA", domain.ErrEncryption, parsed)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", domain.ErrEncryption, block.Type)
	}
}
