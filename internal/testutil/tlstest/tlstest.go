package tlstest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type KeyAlgo string

const (
	RSA   KeyAlgo = "rsa"
	ECDSA KeyAlgo = "ecdsa"
)

type Authority struct {
	Cert *x509.Certificate
	key  crypto.Signer
}

func NewAuthority(t testing.TB, commonName string) *Authority {
	t.Helper()

	key := genKey(t, ECDSA)
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		t.Fatalf("create ca cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse ca cert: %v", err)
	}

	return &Authority{Cert: cert, key: key}
}

func (a *Authority) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(a.Cert)
	return pool
}

func (a *Authority) WriteCAFile(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ca.crt")
	if err := writePEM(path, "CERTIFICATE", a.Cert.Raw, 0o644); err != nil {
		t.Fatalf("write ca cert: %v", err)
	}
	return path
}

func (a *Authority) IssueServerCert(t testing.TB, commonName string, dnsNames []string, ips []net.IP) tls.Certificate {
	t.Helper()
	return a.issueCert(t, commonName, ECDSA, x509.ExtKeyUsageServerAuth, dnsNames, ips)
}

func (a *Authority) IssueClientCert(t testing.TB, commonName string, algo KeyAlgo) tls.Certificate {
	t.Helper()
	return a.issueCert(t, commonName, algo, x509.ExtKeyUsageClientAuth, nil, nil)
}

func (a *Authority) issueCert(
	t testing.TB,
	commonName string,
	algo KeyAlgo,
	usage x509.ExtKeyUsage,
	dnsNames []string,
	ips []net.IP,
) tls.Certificate {
	t.Helper()

	key := genKey(t, algo)
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, a.Cert, key.Public(), a.key)
	if err != nil {
		t.Fatalf("create signed cert: %v", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}
}

// WriteKeypairFiles writes pair's leaf and key as PEM, for things that load from disk.
func WriteKeypairFiles(t testing.TB, dir string, pair tls.Certificate) (string, string) {
	t.Helper()

	certPath := filepath.Join(dir, "client.crt")
	keyPath := filepath.Join(dir, "client.key")

	if err := writePEM(certPath, "CERTIFICATE", pair.Certificate[0], 0o644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(pair.PrivateKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	if err := writePEM(keyPath, "PRIVATE KEY", keyDER, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return certPath, keyPath
}

func genKey(t testing.TB, algo KeyAlgo) crypto.Signer {
	t.Helper()

	var key crypto.Signer
	var err error
	switch algo {
	case RSA:
		key, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}
	if err != nil {
		t.Fatalf("generate %s key: %v", algo, err)
	}
	return key
}

func writePEM(path string, blockType string, der []byte, perm os.FileMode) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	return os.WriteFile(path, data, perm)
}
