package protocol

import "io"

// SessionInterface is the server-side state a command handler operates on.
// The concrete implementation lives in the session package; the handler only
// sees this surface, which keeps it testable with a fake.
type SessionInterface interface {
	// Single-shot file operations.
	List() ([]string, error)
	Open(name string) error
	Create(name string) error
	Rename(oldName, newName string) error
	Delete(name string) error
	Read() ([]byte, error)
	Write(data []byte) error
	CloseFile() (string, error)

	// Upload transfer state. Offsets always reflect durably persisted bytes.
	BeginUpload(name string) (offset int64, resumed bool, err error)
	AppendUploadBlock(block []byte) (offset int64, err error)
	UploadOffset() int64
	UploadActive() bool
	FinishUpload() error

	// OpenDownload returns a reader positioned at offset, after validating
	// that the file exists and the offset is within [0, size].
	OpenDownload(name string, offset int64) (io.ReadCloser, error)
}
