package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/config"
)

func writeCertificate(t *testing.T, certFile, keyFile string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"PactPal"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	certOut, err := os.Create(certFile)
	require.NoError(t, err)
	defer certOut.Close()

	err = pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	require.NoError(t, err)

	keyOut, err := os.Create(keyFile)
	require.NoError(t, err)
	defer keyOut.Close()

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	err = pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: privKeyBytes})
	require.NoError(t, err)
}

func TestTLSListener_Listen(t *testing.T) {
	tempDir := t.TempDir()
	certFile := filepath.Join(tempDir, "server.crt")
	keyFile := filepath.Join(tempDir, "server.key")
	writeCertificate(t, certFile, keyFile)

	tests := []struct {
		name     string
		listener *TLSListener
		addr     string
		wantErr  string
	}{
		{name: "valid pair", listener: NewTLSListener(certFile, keyFile), addr: "127.0.0.1:0"},
		{
			name:     "missing pair",
			listener: NewTLSListener(filepath.Join(tempDir, "none.crt"), filepath.Join(tempDir, "none.key")),
			addr:     "127.0.0.1:0",
			wantErr:  "failed to load TLS certificate",
		},
		{name: "invalid address", listener: NewTLSListener(certFile, keyFile), addr: "invalid-address", wantErr: "invalid-address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := tt.listener.Listen("tcp", tt.addr)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer ln.Close()
			assert.NotEmpty(t, ln.Addr().String())
		})
	}
}

func TestPlainListener_Listen(t *testing.T) {
	ln, err := NewPlainListener().Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	assert.IsType(t, &net.TCPListener{}, ln)

	_, err = NewPlainListener().Listen("tcp", "invalid-address")
	require.Error(t, err)
}

func TestForListener(t *testing.T) {
	plain := ForListener(config.Listener{Port: "8080"})
	assert.IsType(t, &PlainListener{}, plain)

	secure := ForListener(config.Listener{
		Port:               "8443",
		EnableHTTPS:        true,
		CertFileName:       "server.crt",
		PrivateKeyFileName: "server.key",
	})
	require.IsType(t, &TLSListener{}, secure)
	tlsListener := secure.(*TLSListener)
	assert.Equal(t, "server.crt", tlsListener.certFileName)
	assert.Equal(t, "server.key", tlsListener.privateKeyFileName)
}
