package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSendAndReceive(t *testing.T) {
	server := fakeServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Dial(ctx, server.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	received := make(chan []byte, 10)
	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, func(data []byte) { received <- data })
	}()

	require.NoError(t, client.Send([]byte{0x09}))
	buf := make([]byte, 100)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, addr, err := server.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09}, buf[:n])

	for _, msg := range [][]byte{{1, 2, 3}, {4}} {
		_, err = server.WriteToUDP(msg, addr)
		require.NoError(t, err)
	}
	for _, want := range [][]byte{{1, 2, 3}, {4}} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatal("datagram not received")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunStopsOnClose(t *testing.T) {
	server := fakeServer(t)
	client, err := Dial(context.Background(), server.LocalAddr().String())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- client.Run(context.Background(), func([]byte) {})
	}()
	require.NoError(t, client.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestDialInvalidAddress(t *testing.T) {
	_, err := Dial(context.Background(), "no-port")
	assert.Error(t, err)
}
