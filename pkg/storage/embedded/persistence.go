package embedded

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// SaveToFile writes the bucket to filename. The file is replaced atomically
// and the engine stays dirty unless the write succeeds.
func (e *Engine) SaveToFile(filename string) error {
	e.mu.RLock()
	snapshot := Snapshot{
		Bucket:       e.bucket,
		PrimaryIndex: e.primaryIndex,
		SavedAt:      time.Now().UTC(),
		Documents:    make(map[string][]byte, len(e.docs)),
	}
	for key, payload := range e.docs {
		snapshot.Documents[key] = payload
	}
	version := e.version
	e.mu.RUnlock()

	data, err := EncodeSnapshot(&snapshot)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filename, data); err != nil {
		return err
	}

	e.mu.Lock()
	if e.version == version {
		e.dirty = false
	}
	e.mu.Unlock()
	return nil
}

// writeFileAtomic writes data to a synced temporary file and renames it over
// filename.
func writeFileAtomic(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	tmp := filename + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// loadLocked replaces the bucket contents with the snapshot in filename. A
// missing file leaves the bucket empty. Callers hold e.mu.
func (e *Engine) loadLocked(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}

	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	if snapshot.Bucket != "" && snapshot.Bucket != e.bucket {
		return fmt.Errorf("snapshot %s belongs to bucket %s, not %s", filename, snapshot.Bucket, e.bucket)
	}

	e.docs = snapshot.Documents
	if e.docs == nil {
		e.docs = make(map[string][]byte)
	}
	e.primaryIndex = snapshot.PrimaryIndex
	e.dirty = false
	return e.rebuildIndexes()
}

// maxCompressionRatio bounds how far an lz4 block can expand.
const maxCompressionRatio = 255

// EncodeSnapshot serialises a snapshot with its header. The msgpack body is
// lz4-compressed unless it does not shrink.
func EncodeSnapshot(snapshot *Snapshot) ([]byte, error) {
	body, err := msgpack.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(body)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(body, compressed, hashTable[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	var buf bytes.Buffer
	if n > 0 && n < len(body) {
		if err := WriteHeader(&buf, FlagCompressed, len(body)); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		buf.Write(compressed[:n])
	} else {
		if err := WriteHeader(&buf, 0, len(body)); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		buf.Write(body)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	r := bytes.NewReader(data)
	header, err := ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}

	body := rest
	if header.Flags&FlagCompressed != 0 {
		if uint64(header.RawSize) > uint64(len(rest))*maxCompressionRatio {
			return nil, fmt.Errorf("snapshot header size %d exceeds what a %d byte body can hold", header.RawSize, len(rest))
		}
		body = make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(rest, body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		body = body[:n]
	}
	if len(body) != int(header.RawSize) {
		return nil, fmt.Errorf("snapshot body is %d bytes, header says %d", len(body), header.RawSize)
	}

	var snapshot Snapshot
	if err := msgpack.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return &snapshot, nil
}
