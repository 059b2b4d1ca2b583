package bitmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// FileHeaderSize is the on-disk size of BITMAPFILEHEADER.
const FileHeaderSize = 14

var fileSignature = [2]byte{'B', 'M'}

// FileHeader is the BITMAPFILEHEADER that opens every bitmap file: the "BM"
// magic, the total file size and the offset from the start of the file to the
// pixel raster.
type FileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	OffsetBits uint32
}

// NewFileHeader returns a file header with the signature set and the given
// size and raster offset.
func NewFileHeader(fileSize, offsetBits uint32) FileHeader {
	return FileHeader{
		Signature:  fileSignature,
		FileSize:   fileSize,
		OffsetBits: offsetBits,
	}
}

func (h *FileHeader) Serialize() []byte {
	buf := new(bytes.Buffer)

	_, _ = buf.Write(h.Signature[:])
	_ = binary.Write(buf, binary.LittleEndian, h.FileSize)
	_ = binary.Write(buf, binary.LittleEndian, h.Reserved1)
	_ = binary.Write(buf, binary.LittleEndian, h.Reserved2)
	_ = binary.Write(buf, binary.LittleEndian, h.OffsetBits)

	return buf.Bytes()
}

func (h *FileHeader) Deserialize(wire io.Reader) error {
	var err error

	_, err = io.ReadFull(wire, h.Signature[:])
	if err != nil {
		return err
	}

	if h.Signature != fileSignature {
		return fmt.Errorf("%w: % 02x", ErrInvalidSignature, h.Signature[:])
	}

	err = binary.Read(wire, binary.LittleEndian, &h.FileSize)
	if err != nil {
		return err
	}

	err = binary.Read(wire, binary.LittleEndian, &h.Reserved1)
	if err != nil {
		return err
	}

	err = binary.Read(wire, binary.LittleEndian, &h.Reserved2)
	if err != nil {
		return err
	}

	return binary.Read(wire, binary.LittleEndian, &h.OffsetBits)
}
