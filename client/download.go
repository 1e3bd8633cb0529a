package client

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// Download retrieves remoteName into localPath, resuming from the local
// file's current size. Chunks are appended in arrival order; after an
// interruption the next attempt redials and re-issues DOWNLOAD with the new
// local size.
func (c *Client) Download(remoteName, localPath string) (*TransferStats, error) {
	start := time.Now()
	stats := &TransferStats{File: remoteName, ResumedAt: -1}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		stats.Attempts = attempt
		err := c.downloadOnce(remoteName, localPath, stats)
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
	return nil, fmt.Errorf("download of %q failed after %d attempts: %w", remoteName, MaxAttempts, lastErr)
}

func (c *Client) downloadOnce(remoteName, localPath string, stats *TransferStats) error {
	var offset int64
	if info, err := os.Stat(localPath); err == nil {
		offset = info.Size()
	}

	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open local destination: %w", err)
	}
	defer dst.Close()

	reply, err := c.Do("DOWNLOAD", remoteName, strconv.FormatInt(offset, 10))
	if err != nil {
		return err
	}
	fields := wire.DecodeLine(reply)
	if len(fields) == 0 {
		return fmt.Errorf("empty DOWNLOAD reply")
	}
	if fields[0] != protocol.ReplyDownloadReady {
		return replyError(fields)
	}
	if stats.ResumedAt < 0 {
		stats.ResumedAt = offset
	}

	for {
		line, err := c.ReadLine()
		if err != nil {
			return fmt.Errorf("download stream interrupted: %w", err)
		}
		fields := wire.DecodeLine(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case protocol.ReplyChunk:
			if len(fields) < 2 {
				return fmt.Errorf("CHUNK frame without payload")
			}
			chunk, err := wire.DecodeBinary(fields[1])
			if err != nil {
				return err
			}
			if _, err := dst.Write(chunk); err != nil {
				return fmt.Errorf("append chunk: %w", err)
			}
			stats.Bytes += int64(len(chunk))
		case protocol.ReplyDownloadEnd:
			// Local length now equals the durable progress; sync so the
			// next resume offset is trustworthy even after a crash.
			return dst.Sync()
		default:
			return fmt.Errorf("unexpected download frame %q", line)
		}
	}
}
