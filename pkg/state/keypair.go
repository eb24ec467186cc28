package state

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
)

type KeyType int

const (
	KeyTypeUnknown KeyType = iota
	KeyTypeRSA
	KeyTypeEC
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeRSA:
		return "RSA"
	case KeyTypeEC:
		return "EC"
	}
	return "unknown"
}

// Keypair is a certificate chain (leaf first, DER) and the leaf's private key.
type Keypair struct {
	Chain [][]byte
	Key   crypto.PrivateKey
}

func (kp *Keypair) KeyType() KeyType {
	switch kp.Key.(type) {
	case *rsa.PrivateKey:
		return KeyTypeRSA
	case *ecdsa.PrivateKey:
		return KeyTypeEC
	}
	return KeyTypeUnknown
}

func (kp *Keypair) Leaf() (*x509.Certificate, error) {
	if len(kp.Chain) == 0 {
		return nil, errors.New("keypair has an empty chain")
	}
	return x509.ParseCertificate(kp.Chain[0])
}

func KeypairFromCertificate(pair *tls.Certificate) *Keypair {
	return &Keypair{Chain: pair.Certificate, Key: pair.PrivateKey}
}

func LoadKeypair(certPath, keyPath string) (*Keypair, error) {
	if certPath == "" || keyPath == "" {
		return nil, errors.New("need to provide a path to both key and cert")
	}
	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	return KeypairFromCertificate(&pair), nil
}
