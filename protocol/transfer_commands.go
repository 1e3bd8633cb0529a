package protocol

import (
	"fmt"

	"github.com/DuarteR-dev/Projet-FTAM/transfer"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// Upload is client-driven: every block arrives as its own UPLOAD_DATA
// command and is acknowledged with the new durable offset. Download is
// server-driven: after DOWNLOAD_READY the server streams CHUNK lines with no
// per-chunk acknowledgment.

func (h *CommandHandler) handleUpload(name string) error {
	offset, resumed, err := h.session.BeginUpload(name)
	if err != nil {
		return h.replyError(KindUpload, err)
	}
	keyword := ReplyUploadReady
	if resumed {
		keyword = ReplyUploadResume
	}
	h.log.Info("upload started", "file", name, "offset", offset, "resumed", resumed)
	return h.w.WriteLine(keyword, name, FormatOffset(offset))
}

func (h *CommandHandler) handleUploadData(hexData string) error {
	if !h.session.UploadActive() {
		return h.replyError(KindUploadData, ErrUploadNotActive)
	}
	block, err := wire.DecodeBinary(hexData)
	if err != nil {
		return h.replyError(KindUploadData, err)
	}
	if len(block) > BlockSize {
		return h.replyError(KindUploadData,
			fmt.Errorf("block of %d bytes exceeds %d: %w", len(block), BlockSize, ErrMalformedPayload))
	}
	offset, err := h.session.AppendUploadBlock(block)
	if err != nil {
		return h.replyError(KindUploadData, err)
	}
	return h.w.WriteLine(ReplyUploadDataOK, FormatOffset(offset))
}

func (h *CommandHandler) handleUploadEnd() error {
	if !h.session.UploadActive() {
		return h.replyError(KindUploadEnd, ErrUploadNotActive)
	}
	offset := h.session.UploadOffset()
	if err := h.session.FinishUpload(); err != nil {
		return h.replyError(KindUploadEnd, err)
	}
	h.log.Info("upload finished", "offset", offset)
	return h.w.WriteLine(ReplyUploadEndOK)
}

func (h *CommandHandler) handleDownload(name string, offset int64) error {
	src, err := h.session.OpenDownload(name, offset)
	if err != nil {
		return h.replyError(KindDownload, err)
	}
	defer src.Close()

	if err := h.w.WriteLine(ReplyDownloadReady, name, FormatOffset(offset)); err != nil {
		return err
	}
	sent, err := transfer.Stream(h.w, src, BlockSize)
	if err != nil {
		// The stream is already partially written; the client recovers by
		// re-issuing DOWNLOAD from its local size.
		return err
	}
	h.log.Info("download served", "file", name, "offset", offset, "bytes", sent)
	return h.w.WriteLine(ReplyDownloadEnd)
}
