// Package session holds the server-side per-connection state: the sandbox
// root, the currently open file and the active upload sink. One Session
// belongs to exactly one connection goroutine and is never shared.
package session

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/transfer"
)

// Session implements protocol.SessionInterface over a base directory.
type Session struct {
	baseDir  string
	openName string
	upload   *transfer.UploadSink
}

// New creates a session rooted at baseDir. The directory must already exist;
// the server bootstraps it at startup.
func New(baseDir string) *Session {
	return &Session{baseDir: baseDir}
}

// resolve maps a protocol file name to a path inside the base directory.
// Names are opaque single tokens; anything that would resolve outside the
// sandbox is rejected.
func (s *Session) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("name %q: %w", name, protocol.ErrInvalidPath)
	}
	if strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("name %q: %w", name, protocol.ErrInvalidPath)
	}
	path := filepath.Join(s.baseDir, name)
	if filepath.Dir(path) != filepath.Clean(s.baseDir) {
		return "", fmt.Errorf("name %q escapes base directory: %w", name, protocol.ErrInvalidPath)
	}
	return path, nil
}

// List returns the plain files in the base directory.
func (s *Session) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list base directory: %w", err)
	}
	files := lo.Filter(entries, func(e fs.DirEntry, _ int) bool {
		return e.Type().IsRegular()
	})
	return lo.Map(files, func(e fs.DirEntry, _ int) string {
		return e.Name()
	}), nil
}

// Open marks an existing file as the session's open file. Only one file may
// be open at a time; the previous one must be closed first.
func (s *Session) Open(name string) error {
	if s.openName != "" {
		return fmt.Errorf("%q is already open: %w", s.openName, protocol.ErrFileOpen)
	}
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %q: %w", name, protocol.ErrNotFound)
		}
		return fmt.Errorf("stat %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a plain file: %w", name, protocol.ErrNotFound)
	}
	s.openName = name
	return nil
}

// Create makes a new empty file, failing if the name is taken. It does not
// open the file; a following OPEN does.
func (s *Session) Create(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("file %q: %w", name, protocol.ErrAlreadyExists)
		}
		return fmt.Errorf("create %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	return nil
}

// Rename moves oldName to newName. If the open file is renamed, the session
// follows it.
func (s *Session) Rename(oldName, newName string) error {
	oldPath, err := s.resolve(oldName)
	if err != nil {
		return err
	}
	newPath, err := s.resolve(newName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(oldPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file %q: %w", oldName, protocol.ErrNotFound)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename %q: %w", oldName, err)
	}
	if s.openName == oldName {
		s.openName = newName
	}
	return nil
}

// Delete removes a file. Deleting the currently open file is allowed: the
// session keeps the name, a later READ reports not_found, and CLOSE still
// succeeds.
func (s *Session) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file %q: %w", name, protocol.ErrNotFound)
		}
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

// Read returns the full content of the open file.
func (s *Session) Read() ([]byte, error) {
	if s.openName == "" {
		return nil, protocol.ErrNoFileOpen
	}
	path, err := s.resolve(s.openName)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q: %w", s.openName, protocol.ErrNotFound)
		}
		return nil, fmt.Errorf("read %q: %w", s.openName, err)
	}
	return content, nil
}

// Write appends data to the open file and syncs before returning; the reply
// built from a successful Write is the client's durability acknowledgment.
func (s *Session) Write(data []byte) error {
	if s.openName == "" {
		return protocol.ErrNoFileOpen
	}
	path, err := s.resolve(s.openName)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %q for append: %w", s.openName, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append to %q: %w", s.openName, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %q: %w", s.openName, err)
	}
	return nil
}

// CloseFile clears the open file and returns its name.
func (s *Session) CloseFile() (string, error) {
	if s.openName == "" {
		return "", protocol.ErrNoFileOpen
	}
	name := s.openName
	s.openName = ""
	return name, nil
}

// BeginUpload opens (or reopens) the upload sink for name. The reported
// offset is the destination's current durable length; resumed is true when
// bytes are already present. Re-issuing UPLOAD replaces any active sink.
func (s *Session) BeginUpload(name string) (int64, bool, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, false, err
	}
	if s.upload != nil {
		_ = s.upload.Close()
		s.upload = nil
	}
	sink, err := transfer.OpenSink(path)
	if err != nil {
		return 0, false, err
	}
	s.upload = sink
	return sink.Offset(), sink.Offset() > 0, nil
}

// AppendUploadBlock persists one block through the active sink.
func (s *Session) AppendUploadBlock(block []byte) (int64, error) {
	if s.upload == nil {
		return 0, protocol.ErrUploadNotActive
	}
	return s.upload.Append(block)
}

// UploadOffset reports the last known-good offset, 0 when no upload is
// active.
func (s *Session) UploadOffset() int64 {
	if s.upload == nil {
		return 0
	}
	return s.upload.Offset()
}

// UploadActive reports whether an upload exchange is in progress.
func (s *Session) UploadActive() bool {
	return s.upload != nil
}

// FinishUpload closes the sink, ending the transfer exchange.
func (s *Session) FinishUpload() error {
	if s.upload == nil {
		return protocol.ErrUploadNotActive
	}
	err := s.upload.Close()
	s.upload = nil
	if err != nil {
		return fmt.Errorf("close upload sink: %w", err)
	}
	return nil
}

// OpenDownload validates name and offset and returns a reader positioned at
// offset. The caller owns the returned handle.
func (s *Session) OpenDownload(name string, offset int64) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q: %w", name, protocol.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	if offset < 0 || offset > info.Size() {
		return nil, fmt.Errorf("offset %d outside [0, %d]: %w", offset, info.Size(), protocol.ErrInvalidOffset)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %q to %d: %w", name, offset, err)
	}
	return f, nil
}

// Cleanup releases whatever the session still holds. Called when the
// connection ends, including mid-transfer drops; the destination file's
// length then serves as the recovery offset for the next attempt.
func (s *Session) Cleanup() {
	if s.upload != nil {
		_ = s.upload.Close()
		s.upload = nil
	}
	s.openName = ""
}
