package tls

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCertSubjectAndHosts(t *testing.T) {
	dir := t.TempDir()
	gen := NewDevCertGenerator(dir)

	cert, err := gen.GenerateCert([]string{"sentinel.local", "127.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, cert.Certificate)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"Sentinel Service Development"}, parsed.Subject.Organization)
	assert.Contains(t, parsed.DNSNames, "sentinel.local")
	require.Len(t, parsed.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", parsed.IPAddresses[0].String())
}

func TestGenerateCertReusesCachedPair(t *testing.T) {
	dir := t.TempDir()
	gen := NewDevCertGenerator(dir)

	first, err := gen.GenerateCert([]string{"localhost"})
	require.NoError(t, err)

	second, err := gen.GenerateCert([]string{"localhost"})
	require.NoError(t, err)

	assert.Equal(t, first.Certificate[0], second.Certificate[0])
}

func TestGenerateCertKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	gen := NewDevCertGenerator(dir)

	_, err := gen.GenerateCert([]string{"localhost"})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, devKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dir, devKeyFile))
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)
}
