package server_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/server"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// startServer binds a server on a loopback port and serves it until the test
// ends. It returns the dial address and the base directory.
func startServer(t *testing.T) (string, string) {
	t.Helper()
	baseDir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New("127.0.0.1:0", baseDir, time.Minute, log)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv.Addr().String(), baseDir
}

// assoc is a raw protocol connection for driving exchanges by hand.
type assoc struct {
	conn net.Conn
	r    *wire.Reader
	w    *wire.Writer
}

func dialAssoc(t *testing.T, addr string) *assoc {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	a := &assoc{conn: conn, r: wire.NewReader(conn), w: wire.NewWriter(conn)}
	banner, err := a.r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, protocol.Banner, banner)
	return a
}

func (a *assoc) roundTrip(t *testing.T, fields ...string) string {
	t.Helper()
	require.NoError(t, a.w.WriteLine(fields...))
	reply, err := a.r.ReadLine()
	require.NoError(t, err)
	return reply
}

func TestBannerOnConnect(t *testing.T) {
	addr, _ := startServer(t)
	dialAssoc(t, addr)
}

func TestUnknownCommandKeepsAssociation(t *testing.T) {
	addr, _ := startServer(t)
	a := dialAssoc(t, addr)

	require.Equal(t, "ERROR unknown_command", a.roundTrip(t, "FROBNICATE"))
	require.Equal(t, "LIST_OK", a.roundTrip(t, "LIST"))
}

func TestLeaveEndsAssociation(t *testing.T) {
	addr, _ := startServer(t)
	a := dialAssoc(t, addr)

	require.Equal(t, "LEAVE_OK", a.roundTrip(t, "LEAVE"))
	_, err := a.r.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

func TestFileCommandsOverWire(t *testing.T) {
	req := require.New(t)
	addr, baseDir := startServer(t)
	a := dialAssoc(t, addr)

	payload := strings.Repeat("abcdefgh", 65) // 520 bytes

	req.Equal("CREATE_OK x.bin", a.roundTrip(t, "CREATE", "x.bin"))
	req.Equal("OPEN_OK x.bin", a.roundTrip(t, "OPEN", "x.bin"))
	req.Equal("WRITE_OK", a.roundTrip(t, "WRITE", payload))
	req.Equal("READ_OK "+wire.EncodeBinary([]byte(payload)), a.roundTrip(t, "READ"))
	req.Equal("CLOSE_OK x.bin", a.roundTrip(t, "CLOSE"))
	req.Equal("LIST_OK x.bin", a.roundTrip(t, "LIST"))

	stored, err := os.ReadFile(filepath.Join(baseDir, "x.bin"))
	req.NoError(err)
	req.Equal([]byte(payload), stored)
}

// TestUploadSurvivesDisconnect drops the connection right after the first
// block is acknowledged, then resumes from the server-reported offset on a
// fresh association. The destination length drives the resume; the server
// keeps no transfer state across connections.
func TestUploadSurvivesDisconnect(t *testing.T) {
	req := require.New(t)
	addr, baseDir := startServer(t)

	source := bytes.Repeat([]byte{0xc3}, 1000)

	a := dialAssoc(t, addr)
	req.Equal("UPLOAD_READY y.bin offset=0", a.roundTrip(t, "UPLOAD", "y.bin"))
	req.Equal("UPLOAD_DATA_OK offset=512",
		a.roundTrip(t, "UPLOAD_DATA", wire.EncodeBinary(source[:512])))

	// Crash mid-transfer: no UPLOAD_END, no LEAVE.
	req.NoError(a.conn.Close())

	b := dialAssoc(t, addr)
	req.Equal("UPLOAD_RESUME y.bin offset=512", b.roundTrip(t, "UPLOAD", "y.bin"))
	req.Equal("UPLOAD_DATA_OK offset=1000",
		b.roundTrip(t, "UPLOAD_DATA", wire.EncodeBinary(source[512:])))
	req.Equal("UPLOAD_END_OK", b.roundTrip(t, "UPLOAD_END"))
	req.Equal("LEAVE_OK", b.roundTrip(t, "LEAVE"))

	stored, err := os.ReadFile(filepath.Join(baseDir, "y.bin"))
	req.NoError(err)
	req.Equal(source, stored)
}

func TestDownloadStreamOverWire(t *testing.T) {
	req := require.New(t)
	addr, baseDir := startServer(t)

	content := bytes.Repeat([]byte{0x7e}, 700)
	req.NoError(os.WriteFile(filepath.Join(baseDir, "data.bin"), content, 0o644))

	a := dialAssoc(t, addr)
	req.Equal("DOWNLOAD_READY data.bin offset=200", a.roundTrip(t, "DOWNLOAD", "data.bin", "200"))

	var received []byte
	for {
		line, err := a.r.ReadLine()
		req.NoError(err)
		fields := wire.DecodeLine(line)
		if fields[0] == protocol.ReplyDownloadEnd {
			break
		}
		req.Equal(protocol.ReplyChunk, fields[0])
		chunk, err := wire.DecodeBinary(fields[1])
		req.NoError(err)
		received = append(received, chunk...)
	}
	req.Equal(content[200:], received)

	// The association stays usable after the stream.
	req.Equal("LIST_OK data.bin", a.roundTrip(t, "LIST"))
}

func TestConcurrentAssociationsAreIsolated(t *testing.T) {
	req := require.New(t)
	addr, _ := startServer(t)

	a := dialAssoc(t, addr)
	b := dialAssoc(t, addr)

	req.Equal("CREATE_OK shared.txt", a.roundTrip(t, "CREATE", "shared.txt"))
	req.Equal("OPEN_OK shared.txt", a.roundTrip(t, "OPEN", "shared.txt"))

	// The open-file slot is per association, not global.
	req.Equal("OPEN_OK shared.txt", b.roundTrip(t, "OPEN", "shared.txt"))
	req.Equal("CLOSE_OK shared.txt", b.roundTrip(t, "CLOSE"))
	req.Equal("CLOSE_OK shared.txt", a.roundTrip(t, "CLOSE"))
}
