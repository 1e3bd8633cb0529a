package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Reply keywords sent by the server.
const (
	ReplyListOK        = "LIST_OK"
	ReplyOpenOK        = "OPEN_OK"
	ReplyCreateOK      = "CREATE_OK"
	ReplyRenameOK      = "RENAME_OK"
	ReplyDeleteOK      = "DELETE_OK"
	ReplyReadOK        = "READ_OK"
	ReplyWriteOK       = "WRITE_OK"
	ReplyCloseOK       = "CLOSE_OK"
	ReplyUploadReady   = "UPLOAD_READY"
	ReplyUploadResume  = "UPLOAD_RESUME"
	ReplyUploadDataOK  = "UPLOAD_DATA_OK"
	ReplyUploadEndOK   = "UPLOAD_END_OK"
	ReplyUploadError   = "UPLOAD_ERROR"
	ReplyDownloadReady = "DOWNLOAD_READY"
	ReplyDownloadEnd   = "DOWNLOAD_END"
	ReplyDownloadError = "DOWNLOAD_ERROR"
	ReplyChunk         = "CHUNK"
	ReplyLeaveOK       = "LEAVE_OK"
)

// Banner is sent to the client as soon as the association is established.
const Banner = "FTAM_SERVER: Association établie"

// FormatOffset renders the offset field carried by transfer replies.
func FormatOffset(offset int64) string {
	return fmt.Sprintf("offset=%d", offset)
}

// ParseOffsetField extracts the offset from a reply's fields. Transfer
// replies always carry the last known-good offset; it is the single source
// of truth the client resumes from.
func ParseOffsetField(fields []string) (int64, error) {
	for _, f := range fields {
		value, found := strings.CutPrefix(f, "offset=")
		if !found {
			continue
		}
		offset, err := strconv.ParseInt(value, 10, 64)
		if err != nil || offset < 0 {
			return 0, fmt.Errorf("bad offset field %q: %w", f, ErrInvalidOffset)
		}
		return offset, nil
	}
	return 0, fmt.Errorf("no offset field: %w", ErrInvalidOffset)
}
