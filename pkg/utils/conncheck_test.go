package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgresql://user:pw@db:5433/accb", "db:5433"},
		{"postgresql://user:pw@db/accb", "db:5432"},
		{"postgres://localhost/accb?sslmode=disable", "localhost:5432"},
		{"mysql://localhost/accb", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromDBURL(tt.url))
		})
	}
}

func TestExtractFromNatsURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"nats://localhost:4223", "localhost:4223"},
		{"nats://nats", "nats:4222"},
		{"nats://user:pw@nats:1234", "nats:1234"},
		{"tls://a:4222,tls://b:4222", "a:4222"},
		{"http://nats", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromNatsURL(tt.url))
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	assert.NoError(t, WaitForServices(context.Background(), time.Second, "", l.Addr().String()))
}

func TestWaitForTCPTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	assert.Error(t, WaitForTCP(context.Background(), addr, 300*time.Millisecond))
}
