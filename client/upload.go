package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// TransferStats summarizes a completed transfer for reporting.
type TransferStats struct {
	File      string
	Bytes     int64 // payload bytes moved during this call
	ResumedAt int64 // server-reported offset at the start
	Attempts  int
	Duration  time.Duration
}

// Upload sends localPath to the server as remoteName, resuming from the
// server-reported offset. Interrupted attempts redial and restart the
// exchange; the destination length on the server is the sole resume
// authority. A server offset beyond the local source size is a consistency
// fault and fails immediately with ErrOffsetMismatch.
func (c *Client) Upload(localPath, remoteName string) (*TransferStats, error) {
	start := time.Now()
	stats := &TransferStats{File: remoteName, ResumedAt: -1}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		stats.Attempts = attempt
		err := c.uploadOnce(localPath, remoteName, stats)
		if err == nil {
			stats.Duration = time.Since(start)
			return stats, nil
		}
		if isPermanent(err) {
			return nil, err
		}
		lastErr = err
		if rerr := c.reconnect(); rerr != nil {
			lastErr = rerr
		}
	}
	return nil, fmt.Errorf("upload of %q failed after %d attempts: %w", remoteName, MaxAttempts, lastErr)
}

// uploadOnce runs one full UPLOAD exchange on the current connection.
func (c *Client) uploadOnce(localPath, remoteName string, stats *TransferStats) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local source: %w", protocol.ErrNotFound)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat local source: %w", err)
	}
	size := info.Size()

	reply, err := c.Do("UPLOAD", remoteName)
	if err != nil {
		return err
	}
	fields := wire.DecodeLine(reply)
	if len(fields) == 0 {
		return fmt.Errorf("empty UPLOAD reply")
	}
	switch fields[0] {
	case protocol.ReplyUploadReady, protocol.ReplyUploadResume:
	default:
		return replyError(fields)
	}
	offset, err := protocol.ParseOffsetField(fields)
	if err != nil {
		return err
	}
	if offset > size {
		// The server holds more bytes than we have. Truncating or
		// re-sending from here would corrupt the destination.
		return fmt.Errorf("server has %d bytes, local source only %d: %w",
			offset, size, protocol.ErrOffsetMismatch)
	}
	if stats.ResumedAt < 0 {
		stats.ResumedAt = offset
	}

	buf := make([]byte, protocol.BlockSize)
	blockRetries := 0
	for offset < size {
		if _, err := src.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("seek local source to %d: %w", offset, err)
		}
		n, err := src.Read(buf)
		if n == 0 {
			if err != nil && err != io.EOF {
				return fmt.Errorf("read local source: %w", err)
			}
			break
		}

		reply, err := c.Do("UPLOAD_DATA", wire.EncodeBinary(buf[:n]))
		if err != nil {
			return err
		}
		fields := wire.DecodeLine(reply)
		if len(fields) == 0 {
			return fmt.Errorf("empty UPLOAD_DATA reply")
		}
		switch fields[0] {
		case protocol.ReplyUploadDataOK:
			newOffset, err := protocol.ParseOffsetField(fields)
			if err != nil {
				return err
			}
			stats.Bytes += newOffset - offset
			offset = newOffset
			blockRetries = 0
		case protocol.ReplyUploadError:
			// The embedded offset is the last known-good position: retry
			// the same block from there without re-deriving anything.
			lastGood, perr := protocol.ParseOffsetField(fields)
			if perr != nil {
				return replyError(fields)
			}
			blockRetries++
			if blockRetries >= MaxAttempts {
				return replyError(fields)
			}
			offset = lastGood
		default:
			return fmt.Errorf("unexpected UPLOAD_DATA reply %q", reply)
		}
	}

	reply, err = c.Do("UPLOAD_END")
	if err != nil {
		return err
	}
	if reply != protocol.ReplyUploadEndOK {
		return fmt.Errorf("unexpected UPLOAD_END reply %q", reply)
	}
	return nil
}

// isPermanent reports whether retrying can ever change the outcome.
func isPermanent(err error) bool {
	return errors.Is(err, protocol.ErrOffsetMismatch) ||
		errors.Is(err, protocol.ErrNotFound) ||
		errors.Is(err, protocol.ErrInvalidPath) ||
		errors.Is(err, protocol.ErrInvalidOffset)
}
