// Package transfer implements the server side of the block transfer
// sub-protocols: the append-only upload sink and the chunked download
// stream. Resume never relies on session metadata; the durable file length
// is the single authority for the resume offset.
package transfer

import (
	"fmt"
	"os"
)

// UploadSink receives upload blocks for one destination file. The offset
// always equals the number of bytes durably persisted; a failed append rolls
// the file back to the last good offset so a retried block never duplicates
// data.
type UploadSink struct {
	f      *os.File
	path   string
	offset int64
}

// OpenSink opens path for appending, creating it when absent. The starting
// offset is the current file size, which is exactly the resume point after a
// dropped connection.
func OpenSink(path string) (*UploadSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open upload sink: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat upload sink: %w", err)
	}
	return &UploadSink{f: f, path: path, offset: info.Size()}, nil
}

// Offset returns the number of bytes durably written so far.
func (u *UploadSink) Offset() int64 {
	return u.offset
}

// Append writes one block and syncs it to disk. On success the new offset is
// returned. On failure the file is truncated back to the previous offset and
// that offset is returned, so the reply always names the last good position.
func (u *UploadSink) Append(block []byte) (int64, error) {
	if _, err := u.f.Write(block); err != nil {
		u.rollback()
		return u.offset, fmt.Errorf("append block: %w", err)
	}
	if err := u.f.Sync(); err != nil {
		u.rollback()
		return u.offset, fmt.Errorf("sync block: %w", err)
	}
	u.offset += int64(len(block))
	return u.offset, nil
}

// rollback discards a partially persisted block. Without it a retried block
// would duplicate the bytes that made it to disk before the failure.
func (u *UploadSink) rollback() {
	_ = u.f.Truncate(u.offset)
}

// Close releases the sink's file handle.
func (u *UploadSink) Close() error {
	return u.f.Close()
}
