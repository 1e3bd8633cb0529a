// Package client implements the FTAM client core: association, command
// round trips, and resumable uploads and downloads with bounded retry. The
// interactive surface lives in cmd/ftam; this package has no UI.
package client

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// MaxAttempts bounds transfer retries after interruptions.
const MaxAttempts = 5

// dialTimeout bounds connection establishment.
const dialTimeout = 10 * time.Second

// Client is one FTAM association. Commands are strictly sequential: one
// request, one reply; the protocol does not support pipelining.
type Client struct {
	addr   string
	conn   net.Conn
	r      *wire.Reader
	w      *wire.Writer
	banner string
}

// Dial establishes the association and reads the server banner.
func Dial(addr string) (*Client, error) {
	c := &Client{addr: addr}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	// Replies are not bounded by the command-line limit: READ_OK carries the
	// whole file on one line.
	r := wire.NewReaderLimit(conn, 0)
	banner, err := r.ReadLine()
	if err != nil {
		conn.Close()
		return fmt.Errorf("read association banner: %w", err)
	}
	c.conn = conn
	c.r = r
	c.w = wire.NewWriter(conn)
	c.banner = banner
	return nil
}

// reconnect drops the current connection and dials a fresh association.
// Transfer retries call this after an interruption; resume state lives
// entirely in file lengths, so nothing else needs rebuilding.
func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return c.connect()
}

// Banner returns the association banner received on connect.
func (c *Client) Banner() string {
	return c.banner
}

// Do sends one command line and returns the single reply line.
func (c *Client) Do(fields ...string) (string, error) {
	if c.conn == nil {
		return "", fmt.Errorf("not connected")
	}
	if err := c.w.WriteLine(fields...); err != nil {
		return "", fmt.Errorf("send %s: %w", fields[0], err)
	}
	reply, err := c.r.ReadLine()
	if err != nil {
		return "", fmt.Errorf("read %s reply: %w", fields[0], err)
	}
	return reply, nil
}

// ReadLine reads one more server line. Download exchanges use it for the
// server-driven CHUNK stream.
func (c *Client) ReadLine() (string, error) {
	return c.r.ReadLine()
}

// Leave ends the association gracefully.
func (c *Client) Leave() error {
	reply, err := c.Do("LEAVE")
	if err != nil {
		return err
	}
	if reply != protocol.ReplyLeaveOK {
		return fmt.Errorf("unexpected LEAVE reply %q", reply)
	}
	return c.Close()
}

// Close drops the connection without protocol farewell.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// replyError turns an error reply's fields into a typed error carrying the
// server's reason token.
func replyError(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("error reply without reason: %s", strings.Join(fields, " "))
	}
	return fmt.Errorf("server replied %s: %w", strings.Join(fields, " "), protocol.FromReason(fields[1]))
}
