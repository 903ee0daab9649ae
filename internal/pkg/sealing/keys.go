package sealing

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"unicode/utf8"

	"github.com/99minutos/financevault/internal/core/domain"
)

// DefaultKeyBits is the modulus size used for generated key pairs.
const DefaultKeyBits = 2048

// GenerateKeyPair creates a named RSA key pair, both halves PKCS#1 PEM.
func GenerateKeyPair(name string, bits int) (*domain.KeyPair, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &domain.KeyPair{
		Name:          name,
		PrivateKeyPEM: encodePrivate(priv),
		PublicKeyPEM:  EncodePublicKey(&priv.PublicKey),
	}, nil
}

// EncodePublicKey renders pub as a PKCS#1 PEM block.
func EncodePublicKey(pub *rsa.PublicKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  pemPKCS1Public,
		Bytes: x509.MarshalPKCS1PublicKey(pub),
	}))
}

func encodePrivate(priv *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  pemPKCS1Private,
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	}))
}

// ParsePrivateKey parses a PKCS#1 private key PEM.
func ParsePrivateKey(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil || block.Type != pemPKCS1Private {
		return nil, fmt.Errorf("%w: no pkcs1 private key block", domain.ErrEncryption)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", domain.ErrEncryption, err)
	}
	return priv, nil
}

// DecryptPassword reverses EncryptPassword. The plaintext must be valid UTF-8.
func DecryptPassword(ciphertextB64 string, priv *rsa.PrivateKey) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", domain.ErrBadCiphertext, err)
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadCiphertext, err)
	}
	if !utf8.Valid(pt) {
		return "", domain.ErrBadCiphertext
	}
	return string(pt), nil
}
