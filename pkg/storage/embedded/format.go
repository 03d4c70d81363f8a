package embedded

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// Magic bytes to identify snapshot files
	MagicBytes = "DGSN"
	// Current version
	FormatVersion = 1
	// File extension for snapshot files
	FileExtension = ".dgsn"
)

// Header flags
const (
	FlagCompressed uint8 = 1 << iota
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "DGSN"
	Version  uint8   // Format version
	Flags    uint8   // FlagCompressed when the body is an lz4 block
	Reserved [2]byte
	RawSize  uint32 // Size of the msgpack body before compression
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8, rawSize int) error {
	header := FileHeader{
		Magic:   [4]byte{'D', 'G', 'S', 'N'},
		Version: FormatVersion,
		Flags:   flags,
		RawSize: uint32(rawSize),
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}
	return &header, nil
}

// Snapshot is the persisted form of one bucket
type Snapshot struct {
	Bucket       string            `msgpack:"bucket"`
	PrimaryIndex bool              `msgpack:"primary_index"`
	SavedAt      time.Time         `msgpack:"saved_at"`
	Documents    map[string][]byte `msgpack:"documents"`
}
