// Package wire implements the line framing and payload encoding used by the
// FTAM protocol. Every protocol unit is a newline-terminated line of
// space-separated ASCII tokens; binary payloads travel hex-encoded inside a
// single token.
package wire

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineLength bounds a single protocol line. Sized for a command keyword,
// a hex-encoded 512-byte block and trailing fields, with headroom.
const MaxLineLength = 4096

// ErrMalformedPayload is returned when a hex payload has an odd length or
// contains a non-hex character.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrLineTooLong is returned when an incoming line exceeds MaxLineLength.
var ErrLineTooLong = errors.New("line too long")

// EncodeLine joins fields into a single wire line without the terminator.
func EncodeLine(fields ...string) string {
	return strings.Join(fields, " ")
}

// DecodeLine splits a wire line into its whitespace-separated fields.
// Filenames containing whitespace are not representable on this wire format;
// they split into separate tokens.
func DecodeLine(line string) []string {
	return strings.Fields(line)
}

// EncodeBinary hex-encodes a payload for transport inside a line token.
func EncodeBinary(p []byte) string {
	return hex.EncodeToString(p)
}

// DecodeBinary decodes a hex payload token. The empty string decodes to an
// empty payload.
func DecodeBinary(s string) ([]byte, error) {
	p, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}

// Reader reads newline-terminated protocol lines from a stream.
type Reader struct {
	r     *bufio.Reader
	limit int
}

// NewReader wraps r for line-oriented reading, bounded by MaxLineLength.
// Servers use it on the command stream so a peer cannot grow a line without
// bound.
func NewReader(r io.Reader) *Reader {
	return NewReaderLimit(r, MaxLineLength)
}

// NewReaderLimit wraps r with an explicit line length limit. A limit of 0
// disables the bound; the client reads replies this way because READ_OK
// lines are sized by file content, not by the command grammar.
func NewReaderLimit(r io.Reader, limit int) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, MaxLineLength), limit: limit}
}

// ReadLine returns the next line with the terminator stripped. It returns
// io.EOF once the stream is exhausted and ErrLineTooLong as soon as the
// limit is exceeded without a terminator, before the rest of the line is
// consumed.
func (r *Reader) ReadLine() (string, error) {
	var line []byte
	for {
		frag, err := r.r.ReadSlice('\n')
		line = append(line, frag...)
		if r.limit > 0 && len(line) > r.limit {
			return "", ErrLineTooLong
		}
		switch err {
		case nil:
			return strings.TrimRight(string(line), "\r\n"), nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(line) > 0 {
				// Tolerate a final line without terminator.
				return strings.TrimRight(string(line), "\r\n"), nil
			}
			return "", io.EOF
		default:
			return "", err
		}
	}
}

// Writer writes newline-terminated protocol lines to a stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w for line-oriented writing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteLine encodes fields as a single line and flushes it to the stream.
// The flush matters: a reply line is the durability acknowledgment the peer
// waits on before advancing its own state.
func (w *Writer) WriteLine(fields ...string) error {
	if _, err := w.w.WriteString(EncodeLine(fields...)); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteRawLine writes a preassembled line followed by the terminator.
func (w *Writer) WriteRawLine(line string) error {
	if _, err := w.w.WriteString(line); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}
