package state

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/mt-inside/tls-connect/internal/testutil/tlstest"
)

func TestDefaultConfigVerifies(t *testing.T) {
	cfg := DefaultConfig()
	require.True(t, cfg.VerifyCert)
	require.True(t, cfg.VerifyName)
	require.False(t, cfg.OCSPRequireStapling)
	require.Equal(t, ResolverSystem, cfg.Resolver)
	require.Nil(t, cfg.Keypair)
}

func TestConfigFromViperDefaults(t *testing.T) {
	cfg, err := ConfigFromViper(viper.New())
	require.NoError(t, err)
	require.True(t, cfg.VerifyCert)
	require.True(t, cfg.VerifyName)
	require.Equal(t, ResolverSystem, cfg.Resolver)
	require.Equal(t, DefaultResolvConf, cfg.ResolvConf)
	require.Zero(t, cfg.MinVersion)
	require.Zero(t, cfg.MaxVersion)
	require.Empty(t, cfg.ALPN)
	require.Empty(t, cfg.TlsServingCAs)
	require.Nil(t, cfg.Keypair)
}

func TestConfigFromViper(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, "test ca")
	caPath := ca.WriteCAFile(t, dir)
	pair := ca.IssueClientCert(t, "client", tlstest.ECDSA)
	certPath, keyPath := tlstest.WriteKeypairFiles(t, dir, pair)

	v := viper.New()
	v.Set("no-verify-name", true)
	v.Set("require-ocsp-stapling", true)
	v.Set("alpn", []string{"h2"})
	v.Set("resolver", "dns")
	v.Set("resolv-conf", "/tmp/resolv.conf")
	v.Set("tls-min", "1.2")
	v.Set("tls-max", "TLS1.3")
	v.Set("cert", certPath)
	v.Set("key", keyPath)
	v.Set("ca", []string{caPath})

	cfg, err := ConfigFromViper(v)
	require.NoError(t, err)

	require.True(t, cfg.VerifyCert)
	require.False(t, cfg.VerifyName)
	require.True(t, cfg.OCSPRequireStapling)
	require.Equal(t, []string{"h2"}, cfg.ALPN)
	require.Equal(t, ResolverDNS, cfg.Resolver)
	require.Equal(t, "/tmp/resolv.conf", cfg.ResolvConf)
	require.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	require.Equal(t, uint16(tls.VersionTLS13), cfg.MaxVersion)

	require.NotNil(t, cfg.Keypair)
	require.Equal(t, KeyTypeEC, cfg.Keypair.KeyType())
	leaf, err := cfg.Keypair.Leaf()
	require.NoError(t, err)
	require.Equal(t, "client", leaf.Subject.CommonName)

	require.Len(t, cfg.TlsServingCAs, 1)
	require.True(t, ca.Cert.Equal(cfg.TlsServingCAs[0]))
}

func TestConfigFromViperInsecure(t *testing.T) {
	v := viper.New()
	v.Set("insecure", true)

	cfg, err := ConfigFromViper(v)
	require.NoError(t, err)
	require.False(t, cfg.VerifyCert)
	require.False(t, cfg.VerifyName)
}

func TestConfigFromViperErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"unknown resolver":  {"resolver": "carrier-pigeon"},
		"bad tls version":   {"tls-min": "1.4"},
		"cert without key":  {"cert": "/nonexistent.crt"},
		"missing ca bundle": {"ca": []string{"/nonexistent/ca.crt"}},
	}

	for name, settings := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range settings {
				v.Set(k, val)
			}
			_, err := ConfigFromViper(v)
			require.Error(t, err)
		})
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := map[string]uint16{
		"":        0,
		"1.0":     tls.VersionTLS10,
		"1.1":     tls.VersionTLS11,
		"1.2":     tls.VersionTLS12,
		"tls1.3":  tls.VersionTLS13,
		" TLS13 ": tls.VersionTLS13,
	}
	for in, want := range cases {
		got, err := ParseTLSVersion(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseTLSVersion("ssl3")
	require.Error(t, err)
}

func TestLoadCertificates(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, "test ca")

	certs, err := LoadCertificates(ca.WriteCAFile(t, dir))
	require.NoError(t, err)
	require.Len(t, certs, 1)

	empty := filepath.Join(dir, "empty.pem")
	require.NoError(t, os.WriteFile(empty, []byte("not a pem file\n"), 0o644))
	_, err = LoadCertificates(empty)
	require.Error(t, err)
}
