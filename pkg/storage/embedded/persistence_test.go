package embedded

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/docgate/pkg/domain"
)

func TestFileHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, FlagCompressed, 1234))

	header, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, MagicBytes, string(header.Magic[:]))
	assert.Equal(t, uint8(FormatVersion), header.Version)
	assert.Equal(t, FlagCompressed, header.Flags)
	assert.Equal(t, uint32(1234), header.RawSize)
}

func TestFileHeader_Invalid(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHeader(&buf, 0, 10))
		data := buf.Bytes()
		copy(data, "NOPE")

		_, err := ReadHeader(bytes.NewReader(data))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid file format")
	})

	t.Run("bad version", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteHeader(&buf, 0, 10))
		data := buf.Bytes()
		data[4] = FormatVersion + 1

		_, err := ReadHeader(bytes.NewReader(data))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file version")
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ReadHeader(bytes.NewReader([]byte("DG")))
		assert.Error(t, err)
	})
}

func TestSnapshot_RoundTrip(t *testing.T) {
	payload, err := encode(domain.Document{"type": "customer", "firstname": strings.Repeat("a", 512)})
	require.NoError(t, err)

	snapshot := &Snapshot{
		Bucket:       "test",
		PrimaryIndex: true,
		SavedAt:      time.Now().UTC().Truncate(time.Second),
		Documents:    map[string][]byte{"c1": payload, "c2": payload},
	}
	data, err := EncodeSnapshot(snapshot)
	require.NoError(t, err)

	header, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, FlagCompressed, header.Flags&FlagCompressed)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Bucket, decoded.Bucket)
	assert.True(t, decoded.PrimaryIndex)
	assert.True(t, snapshot.SavedAt.Equal(decoded.SavedAt))
	assert.Equal(t, snapshot.Documents, decoded.Documents)
}

func TestSnapshot_Corrupt(t *testing.T) {
	data, err := EncodeSnapshot(&Snapshot{Bucket: "test"})
	require.NoError(t, err)

	_, err = DecodeSnapshot(data[:len(data)-1])
	assert.Error(t, err)

	// a compressed header claiming far more than its body can expand to
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, FlagCompressed, 1<<30))
	buf.WriteByte(0)
	_, err = DecodeSnapshot(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds what a 1 byte body can hold")

	buf.Reset()
	require.NoError(t, WriteHeader(&buf, FlagCompressed, 1<<30))
	_, err = DecodeSnapshot(buf.Bytes())
	assert.Error(t, err)
}

func TestEngine_FailedSaveKeepsDirty(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	engine := NewEngine("test")
	require.NoError(t, engine.Insert("c1", domain.Document{"type": "customer"}))

	err := engine.SaveToFile(filepath.Join(blocker, "data.dgsn"))
	require.Error(t, err)
	assert.Equal(t, true, engine.Stats()["dirty"])

	file := filepath.Join(dir, "data.dgsn")
	require.NoError(t, engine.SaveToFile(file))
	assert.Equal(t, false, engine.Stats()["dirty"])

	_, err = os.Stat(file + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestEngine_SaveAndOpen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data"+FileExtension)

	engine := NewEngine("test", WithDataFile(file))
	require.NoError(t, engine.Open())
	require.NoError(t, engine.Insert("c1", domain.Document{"type": "customer", "firstname": "Ada"}))
	require.NoError(t, engine.ArrayAppend("c1", "creditcards", "visa"))
	require.NoError(t, engine.Insert("p1", domain.Document{"type": "product", "price": 2.5}))
	engine.CreatePrimaryIndex()
	require.NoError(t, engine.Close())

	_, err := os.Stat(file)
	require.NoError(t, err)

	reopened := NewEngine("test", WithDataFile(file))
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Len())
	assert.True(t, reopened.HasPrimaryIndex())

	doc, err := reopened.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", doc["firstname"])
	assert.Equal(t, []interface{}{"visa"}, doc["creditcards"])

	rows, err := reopened.Execute(byTypeStatement("product"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID())
	assert.Equal(t, 2.5, rows[0]["price"])
}

func TestEngine_OpenMissingFile(t *testing.T) {
	engine := NewEngine("test", WithDataFile(filepath.Join(t.TempDir(), "none.dgsn")))
	require.NoError(t, engine.Open())
	assert.Equal(t, 0, engine.Len())
	require.NoError(t, engine.Close())
}

func TestEngine_OpenWrongBucket(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.dgsn")
	engine := NewEngine("default")
	require.NoError(t, engine.SaveToFile(file))

	other := NewEngine("other", WithDataFile(file))
	err := other.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to bucket default")
}

func TestEngine_OpenCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.dgsn")
	require.NoError(t, os.WriteFile(file, []byte("garbage"), 0644))

	engine := NewEngine("test", WithDataFile(file))
	assert.Error(t, engine.Open())
}

func TestEngine_BackgroundSave(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.dgsn")
	engine := NewEngine("test", WithDataFile(file), WithBackgroundSave(10*time.Millisecond))
	require.NoError(t, engine.Open())
	defer engine.Close()

	require.NoError(t, engine.Insert("c1", domain.Document{"type": "customer"}))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(file)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestDialer(t *testing.T) {
	engine := NewEngine("test")
	session, err := NewDialer(engine).Dial(context.Background())
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.EnsurePrimaryIndex(ctx))
	require.NoError(t, session.Insert(ctx, "c1", domain.Document{"type": "customer"}))

	doc, err := session.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "customer", doc.Type())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = session.Get(cancelled, "c1")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewDialer(NewEngine("x")).Dial(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
