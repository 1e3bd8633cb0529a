package transfer

import (
	"io"

	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

// chunkKeyword prefixes every download data frame.
const chunkKeyword = "CHUNK"

// Stream reads r to exhaustion and writes one CHUNK line per block of at
// most blockSize bytes. The exchange is unidirectional: no acknowledgment is
// read between chunks. It returns the number of payload bytes sent.
func Stream(w *wire.Writer, r io.Reader, blockSize int) (int64, error) {
	buf := make([]byte, blockSize)
	var sent int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := w.WriteLine(chunkKeyword, wire.EncodeBinary(buf[:n])); werr != nil {
				return sent, werr
			}
			sent += int64(n)
		}
		if err == io.EOF {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}
	}
}
