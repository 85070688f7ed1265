// Package udp provides the datagram transport to the broadcasting server.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/mpapenbr/accbroadcast-go/log"
)

// MaxDatagramSize is the largest datagram Run is able to receive
const MaxDatagramSize = 65535

type (
	// Client is a connected UDP socket. Send may be called concurrently with Run.
	Client struct {
		conn   *net.UDPConn
		logger *log.Logger
	}
	Option func(*Client)
)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Dial resolves addr (host:port) and connects a UDP socket to it.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c := &Client{
		conn:   conn.(*net.UDPConn),
		logger: log.Default().Named("udp"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Debug("socket connected",
		log.String("local", c.conn.LocalAddr().String()),
		log.String("remote", c.conn.RemoteAddr().String()))
	return c, nil
}

// Send writes a single datagram. There is no acknowledgment.
func (c *Client) Send(data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

// Run reads datagrams until ctx is done or the client is closed.
// handler is called sequentially with a private copy of each datagram.
func (c *Client) Run(ctx context.Context, handler func(data []byte)) error {
	stop := context.AfterFunc(ctx, func() {
		//nolint:errcheck // unblocks the pending read
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, net.ErrClosed):
				return nil
			case errors.Is(err, syscall.ECONNREFUSED):
				// nobody listening on the server port (yet)
				c.logger.Debug("connection refused", log.ErrorField(err))
				continue
			default:
				return fmt.Errorf("read: %w", err)
			}
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		handler(data)
	}
}

func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
