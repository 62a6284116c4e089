package container

import (
	"bytes"
	"testing"

	"github.com/kayru/patchy/internal/blockhash"
	"github.com/kayru/patchy/internal/delta"
)

func sampleMetadata() *Metadata {
	return &Metadata{
		BaseSize:  16,
		BaseHash:  blockhash.Of([]byte("AAAAAAAAAAAAAAAA")),
		OtherSize: 19,
		OtherHash: blockhash.Of([]byte("AAAAAAAAAAAAAAAAXYZ")),
		BlockLog:  4,
		Commands: []delta.Command{
			{Tag: delta.TagCopyBase, Offset: 0, DstOffset: 0, Length: 16},
			{Tag: delta.TagCopyLiteral, Offset: 0, DstOffset: 16, Length: 3},
		},
		Literals: []byte("XYZ"),
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	meta := sampleMetadata()

	var buf bytes.Buffer
	if err := Write(&buf, meta, DefaultLevel); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.BaseSize != meta.BaseSize || got.OtherSize != meta.OtherSize {
		t.Fatalf("sizes mismatch: got %+v, want %+v", got, meta)
	}
	if got.BaseHash != meta.BaseHash || got.OtherHash != meta.OtherHash {
		t.Fatalf("hashes mismatch: got %+v, want %+v", got, meta)
	}
	if got.BlockLog != meta.BlockLog {
		t.Fatalf("BlockLog = %d, want %d", got.BlockLog, meta.BlockLog)
	}
	if len(got.Commands) != len(meta.Commands) {
		t.Fatalf("Commands = %+v, want %+v", got.Commands, meta.Commands)
	}
	for i := range meta.Commands {
		if got.Commands[i] != meta.Commands[i] {
			t.Fatalf("command %d = %+v, want %+v", i, got.Commands[i], meta.Commands[i])
		}
	}
	if !bytes.Equal(got.Literals, meta.Literals) {
		t.Fatalf("Literals = %q, want %q", got.Literals, meta.Literals)
	}
}

func TestWriteRejectsLevelOutOfRange(t *testing.T) {
	meta := sampleMetadata()
	var buf bytes.Buffer
	if err := Write(&buf, meta, MinLevel-1); err == nil {
		t.Fatal("expected an error for a too-low compression level")
	}
	if err := Write(&buf, meta, MaxLevel+1); err == nil {
		t.Fatal("expected an error for a too-high compression level")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleMetadata(), DefaultLevel); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[0] = 'X'

	if _, err := Read(bytes.NewReader(corrupted)); err == nil {
		t.Fatal("expected an error for a corrupted magic header")
	}
}

func TestReadRejectsTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleMetadata(), DefaultLevel); err != nil {
		t.Fatalf("Write: %v", err)
	}
	truncated := buf.Bytes()[:len(buf.Bytes())-4]

	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected an error for a truncated patch body")
	}
}

func TestReadRejectsBadTiling(t *testing.T) {
	meta := sampleMetadata()
	// Introduce a gap: the second command's destination offset no longer
	// abuts the first.
	meta.Commands[1].DstOffset = 17

	var buf bytes.Buffer
	if err := Write(&buf, meta, DefaultLevel); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Read(&buf); err == nil {
		t.Fatal("expected an error for a command list that doesn't tile other")
	}
}
