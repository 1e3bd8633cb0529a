package protocol_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/session"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// testHandler wires a real session over a temp directory to a handler whose
// replies are captured in a buffer.
type testHandler struct {
	baseDir string
	out     *bytes.Buffer
	handler *protocol.CommandHandler
}

func newTestHandler(t *testing.T) *testHandler {
	t.Helper()
	baseDir := t.TempDir()
	out := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := protocol.NewCommandHandler(session.New(baseDir), wire.NewWriter(out), log)
	return &testHandler{baseDir: baseDir, out: out, handler: h}
}

// run executes one command line and returns the reply lines it produced.
func (th *testHandler) run(t *testing.T, line string) []string {
	t.Helper()
	th.out.Reset()
	quit, err := th.handler.HandleLine(line)
	require.NoError(t, err)
	require.False(t, quit)
	replies := strings.Split(strings.TrimRight(th.out.String(), "\n"), "\n")
	require.NotEmpty(t, replies)
	return replies
}

func (th *testHandler) runOne(t *testing.T, line string) string {
	t.Helper()
	replies := th.run(t, line)
	require.Len(t, replies, 1)
	return replies[0]
}

func (th *testHandler) seed(t *testing.T, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(th.baseDir, name), content, 0o644))
}

func TestDispatcherUnknownCommand(t *testing.T) {
	th := newTestHandler(t)
	require.Equal(t, "ERROR unknown_command", th.runOne(t, "FROBNICATE"))
	// The association keeps working afterwards.
	require.Equal(t, "LIST_OK", th.runOne(t, "LIST"))
}

func TestDispatcherFileCommands(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)

	req.Equal("OPEN_ERROR not_found", th.runOne(t, "OPEN ghost.txt"))
	req.Equal("CREATE_OK ghost.txt", th.runOne(t, "CREATE ghost.txt"))
	req.Equal("CREATE_ERROR already_exists", th.runOne(t, "CREATE ghost.txt"))
	req.Equal("OPEN_OK ghost.txt", th.runOne(t, "OPEN ghost.txt"))
	req.Equal("OPEN_ERROR file_open", th.runOne(t, "OPEN ghost.txt"))

	req.Equal("WRITE_OK", th.runOne(t, "WRITE a"))
	req.Equal("WRITE_OK", th.runOne(t, "WRITE b"))
	req.Equal("READ_OK "+wire.EncodeBinary([]byte("ab")), th.runOne(t, "READ"))

	req.Equal("CLOSE_OK ghost.txt", th.runOne(t, "CLOSE"))
	req.Equal("CLOSE_ERROR no_file_open", th.runOne(t, "CLOSE"))
	req.Equal("READ_ERROR no_file_open", th.runOne(t, "READ"))

	req.Equal("RENAME_OK ghost.txt spirit.txt", th.runOne(t, "RENAME ghost.txt spirit.txt"))
	req.Equal("DELETE_OK spirit.txt", th.runOne(t, "DELETE spirit.txt"))
	req.Equal("DELETE_ERROR not_found", th.runOne(t, "DELETE spirit.txt"))
}

func TestDispatcherRejectsTraversal(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)

	req.Equal("OPEN_ERROR invalid_path", th.runOne(t, "OPEN ../escape"))
	req.Equal("CREATE_ERROR invalid_path", th.runOne(t, "CREATE a/b"))
	req.Equal("DOWNLOAD_ERROR invalid_path", th.runOne(t, "DOWNLOAD .. 0"))
}

func TestDispatcherUploadExchange(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)

	req.Equal("UPLOAD_READY fresh.bin offset=0", th.runOne(t, "UPLOAD fresh.bin"))

	block := bytes.Repeat([]byte{0x5a}, 512)
	req.Equal("UPLOAD_DATA_OK offset=512", th.runOne(t, "UPLOAD_DATA "+wire.EncodeBinary(block)))
	req.Equal("UPLOAD_DATA_OK offset=515", th.runOne(t, "UPLOAD_DATA "+wire.EncodeBinary([]byte{1, 2, 3})))
	req.Equal("UPLOAD_END_OK", th.runOne(t, "UPLOAD_END"))

	stored, err := os.ReadFile(filepath.Join(th.baseDir, "fresh.bin"))
	req.NoError(err)
	req.Equal(append(append([]byte{}, block...), 1, 2, 3), stored)
}

func TestDispatcherUploadResume(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)
	th.seed(t, "part.bin", bytes.Repeat([]byte{7}, 100))

	req.Equal("UPLOAD_RESUME part.bin offset=100", th.runOne(t, "UPLOAD part.bin"))
}

func TestDispatcherUploadErrors(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)

	req.Equal("UPLOAD_ERROR upload_not_active offset=0", th.runOne(t, "UPLOAD_DATA ff"))
	req.Equal("UPLOAD_ERROR upload_not_active offset=0", th.runOne(t, "UPLOAD_END"))

	req.Equal("UPLOAD_READY f.bin offset=0", th.runOne(t, "UPLOAD f.bin"))
	req.Equal("UPLOAD_DATA_OK offset=2", th.runOne(t, "UPLOAD_DATA cafe"))

	// Malformed payloads report the last known-good offset.
	req.Equal("UPLOAD_ERROR malformed_payload offset=2", th.runOne(t, "UPLOAD_DATA xyz"))
	req.Equal("UPLOAD_ERROR malformed_payload offset=2", th.runOne(t, "UPLOAD_DATA abc"))

	// Oversized blocks are refused without advancing.
	oversized := wire.EncodeBinary(bytes.Repeat([]byte{1}, protocol.BlockSize+1))
	req.Equal("UPLOAD_ERROR malformed_payload offset=2", th.runOne(t, "UPLOAD_DATA "+oversized))

	// The same block retried cleanly still lands.
	req.Equal("UPLOAD_DATA_OK offset=4", th.runOne(t, "UPLOAD_DATA beef"))
	req.Equal("UPLOAD_END_OK", th.runOne(t, "UPLOAD_END"))
}

func TestDispatcherDownloadStream(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)
	content := bytes.Repeat([]byte{0xab}, 1000)
	th.seed(t, "big.bin", content)

	replies := th.run(t, "DOWNLOAD big.bin 0")
	req.Equal("DOWNLOAD_READY big.bin offset=0", replies[0])
	req.Equal("DOWNLOAD_END", replies[len(replies)-1])

	var received []byte
	for _, line := range replies[1 : len(replies)-1] {
		fields := wire.DecodeLine(line)
		req.Equal("CHUNK", fields[0])
		chunk, err := wire.DecodeBinary(fields[1])
		req.NoError(err)
		req.LessOrEqual(len(chunk), protocol.BlockSize)
		received = append(received, chunk...)
	}
	req.Equal(content, received)
}

func TestDispatcherDownloadFromEveryOffset(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)
	content := []byte("0123456789abcdef")
	th.seed(t, "small.bin", content)

	for offset := 0; offset <= len(content); offset++ {
		replies := th.run(t, "DOWNLOAD small.bin "+strconv.Itoa(offset))
		req.Equal("DOWNLOAD_READY small.bin offset="+strconv.Itoa(offset), replies[0])
		req.Equal("DOWNLOAD_END", replies[len(replies)-1])

		var received []byte
		for _, line := range replies[1 : len(replies)-1] {
			fields := wire.DecodeLine(line)
			chunk, err := wire.DecodeBinary(fields[1])
			req.NoError(err)
			received = append(received, chunk...)
		}
		req.Equal(content[offset:], received, "offset %d", offset)
	}
}

func TestDispatcherDownloadErrors(t *testing.T) {
	req := require.New(t)
	th := newTestHandler(t)
	th.seed(t, "small.bin", []byte("data"))

	req.Equal("DOWNLOAD_ERROR not_found", th.runOne(t, "DOWNLOAD missing.bin 0"))
	req.Equal("DOWNLOAD_ERROR invalid_offset", th.runOne(t, "DOWNLOAD small.bin 5"))
	req.Equal("DOWNLOAD_ERROR invalid_offset", th.runOne(t, "DOWNLOAD small.bin -1"))
}

func TestDispatcherLeave(t *testing.T) {
	th := newTestHandler(t)
	quit, err := th.handler.HandleLine("LEAVE")
	require.NoError(t, err)
	require.True(t, quit)
	require.Equal(t, "LEAVE_OK\n", th.out.String())
}
