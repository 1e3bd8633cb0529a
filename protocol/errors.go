package protocol

import (
	"errors"

	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// Protocol error kinds. The sentinel text doubles as the reason token sent
// on the wire, so replies stay machine-parseable on the client side.
var (
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrNoFileOpen       = errors.New("no_file_open")
	ErrFileOpen         = errors.New("file_open")
	ErrInvalidPath      = errors.New("invalid_path")
	ErrInvalidOffset    = errors.New("invalid_offset")
	ErrIOFailure        = errors.New("io_failure")
	ErrUnknownCommand   = errors.New("unknown_command")
	ErrMissingArgument  = errors.New("missing_argument")
	ErrUploadNotActive  = errors.New("upload_not_active")
	ErrMalformedPayload = errors.New("malformed_payload")

	// ErrOffsetMismatch is a client-side consistency fault: the server
	// reported a resume offset beyond the local source. Re-sending from
	// there would upload wrong bytes, so the transfer must be refused.
	ErrOffsetMismatch = errors.New("offset_mismatch")
)

// Reason maps an error to the reason token carried in *_ERROR replies.
// Unclassified errors degrade to io_failure rather than leaking internals.
func Reason(err error) string {
	for _, kind := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrNoFileOpen,
		ErrFileOpen,
		ErrInvalidPath,
		ErrInvalidOffset,
		ErrUnknownCommand,
		ErrMissingArgument,
		ErrUploadNotActive,
		ErrMalformedPayload,
		ErrOffsetMismatch,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	if errors.Is(err, wire.ErrMalformedPayload) {
		return ErrMalformedPayload.Error()
	}
	return ErrIOFailure.Error()
}

// FromReason maps a wire reason token back to its error kind, so the client
// can match on sentinels instead of strings. Unrecognized tokens map to
// ErrIOFailure.
func FromReason(token string) error {
	for _, kind := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrNoFileOpen,
		ErrFileOpen,
		ErrInvalidPath,
		ErrInvalidOffset,
		ErrUnknownCommand,
		ErrMissingArgument,
		ErrUploadNotActive,
		ErrMalformedPayload,
		ErrOffsetMismatch,
	} {
		if token == kind.Error() {
			return kind
		}
	}
	return ErrIOFailure
}
