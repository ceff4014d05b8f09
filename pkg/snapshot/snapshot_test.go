package snapshot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rerrors "github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

type todo struct {
	Title string
	Done  bool
}

// newState builds a scope with a few persistable signals.
func newState(t *testing.T) (*reactive.Owner, *reactive.Signal[int], *reactive.Signal[string], *reactive.Signal[[]todo]) {
	t.Helper()
	root := reactive.NewOwner(nil)
	var count *reactive.Signal[int]
	var name *reactive.Signal[string]
	var todos *reactive.Signal[[]todo]
	root.Run(func() {
		count = reactive.NewSignal(0, reactive.PersistKey("count"))
		name = reactive.NewSignal("", reactive.PersistKey("name"))
		todos = reactive.NewSignal([]todo(nil), reactive.PersistKey("todos"))
		reactive.NewSignal(true, reactive.PersistKey("hover"), reactive.Transient())
	})
	t.Cleanup(root.Dispose)
	return root, count, name, todos
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root, count, name, todos := newState(t)
	count.Set(5)
	name.Set(strings.Repeat("reactive ", 64))
	todos.Set([]todo{{Title: "write tests", Done: true}, {Title: "ship"}})

	doc, err := Capture(root)
	if err != nil {
		t.Fatalf("Capture error = %v", err)
	}
	if got := strings.Join(doc.Keys(), ","); got != "count,name,todos" {
		t.Errorf("captured keys = %s, want count,name,todos", got)
	}

	tests := []struct {
		compression Compression
		wantTag     Compression
	}{
		{CompressionNone, CompressionNone},
		{CompressionLZ4, CompressionLZ4},
		{CompressionZstd, CompressionZstd},
	}
	for _, tt := range tests {
		t.Run(tt.compression.String(), func(t *testing.T) {
			data, err := Encode(doc, tt.compression)
			if err != nil {
				t.Fatalf("Encode error = %v", err)
			}
			got, h, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode error = %v", err)
			}
			if h.Compression != tt.wantTag {
				t.Errorf("header compression = %v, want %v", h.Compression, tt.wantTag)
			}
			if h.Version != Version {
				t.Errorf("header version = %d, want %d", h.Version, Version)
			}
			if !got.Created.Equal(doc.Created) {
				t.Errorf("Created = %v, want %v", got.Created, doc.Created)
			}
			for _, k := range doc.Keys() {
				if !bytes.Equal(got.Signals[k], doc.Signals[k]) {
					t.Errorf("signal %s changed in round trip", k)
				}
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	root, count, _, _ := newState(t)
	count.Set(3)

	doc, _ := Capture(root)
	a, _ := Encode(doc, CompressionZstd)
	b, _ := Encode(doc, CompressionZstd)
	if !bytes.Equal(a, b) {
		t.Error("encoding the same document twice should produce identical bytes")
	}
}

func TestIncompressiblePayloadStoredRaw(t *testing.T) {
	doc := &Document{Version: Version}
	data, err := Encode(doc, CompressionZstd)
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	h, _, err := ReadHeader(data)
	if err != nil {
		t.Fatalf("ReadHeader error = %v", err)
	}
	if h.Compression != CompressionNone {
		t.Errorf("tiny payload compression = %v, want none", h.Compression)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	root, _, name, _ := newState(t)
	name.Set(strings.Repeat("x", 200))
	doc, _ := Capture(root)

	for _, c := range []Compression{CompressionNone, CompressionZstd} {
		data, _ := Encode(doc, c)
		tampered := append([]byte(nil), data...)
		tampered[len(tampered)-1] ^= 0xff

		if _, _, err := Decode(tampered); err == nil {
			t.Errorf("%v: Decode accepted a modified payload", c)
		}
	}

	data, _ := Encode(doc, CompressionNone)
	data[len(data)-1] ^= 0xff
	_, _, err := Decode(data)
	if code := errorCode(err); code != "S203" {
		t.Errorf("tampered uncompressed payload error code = %s, want S203", code)
	}
}

func TestDecodeRejectsBadHeaders(t *testing.T) {
	doc := &Document{Version: Version}
	good, _ := Encode(doc, CompressionNone)

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 99
	badTag := append([]byte(nil), good...)
	badTag[5] = 9

	tests := []struct {
		name string
		data []byte
		code string
	}{
		{"empty", nil, "S200"},
		{"wrong magic", []byte("JUNKJUNKJUNK"), "S200"},
		{"version", badVersion, "S201"},
		{"compression", badTag, "S202"},
		{"truncated", good[:10], "S200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			if code := errorCode(err); code != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	src, count, name, todos := newState(t)
	count.Set(42)
	name.Set("saved")
	todos.Set([]todo{{Title: "a"}})
	doc, _ := Capture(src)
	data, _ := Encode(doc, CompressionZstd)

	dst, dstCount, dstName, dstTodos := newState(t)
	notified := 0
	dstCount.Subscribe(func(int) { notified++ })

	decoded, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	report, err := Restore(dst, decoded)
	if err != nil {
		t.Fatalf("Restore error = %v", err)
	}

	if dstCount.Peek() != 42 || dstName.Peek() != "saved" {
		t.Errorf("restored count=%d name=%q, want 42 saved", dstCount.Peek(), dstName.Peek())
	}
	if got := dstTodos.Peek(); len(got) != 1 || got[0].Title != "a" {
		t.Errorf("restored todos = %+v", got)
	}
	if notified != 1 {
		t.Errorf("count subscriber notified %d times, want 1", notified)
	}
	if got := strings.Join(report.Restored, ","); got != "count,name,todos" {
		t.Errorf("Restored = %s", got)
	}
}

func TestRestoreSkipsUnknownKeys(t *testing.T) {
	src := reactive.NewOwner(nil)
	src.Run(func() {
		reactive.NewSignal(1, reactive.PersistKey("count"))
		reactive.NewSignal("gone", reactive.PersistKey("legacy"))
	})
	doc, _ := Capture(src)

	dst, _, _, _ := newState(t)
	report, err := Restore(dst, doc)
	if err != nil {
		t.Fatalf("Restore error = %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "legacy" {
		t.Errorf("Skipped = %v, want [legacy]", report.Skipped)
	}
}

func TestRestoreTypeMismatch(t *testing.T) {
	src := reactive.NewOwner(nil)
	src.Run(func() {
		reactive.NewSignal("not a number", reactive.PersistKey("count"))
	})
	doc, _ := Capture(src)

	dst, count, _, _ := newState(t)
	count.Set(7)
	if _, err := Restore(dst, doc); errorCode(err) != "S206" {
		t.Errorf("Restore error = %v, want S206", err)
	}
	if count.Peek() != 7 {
		t.Errorf("failed restore changed count to %d", count.Peek())
	}
}

// failingPersistable rejects every write.
type failingPersistable struct{}

func (failingPersistable) PersistKey() string { return "broken" }
func (failingPersistable) IsTransient() bool { return false }
func (failingPersistable) GetAny() any { return nil }
func (failingPersistable) SetAny(any) error { return errors.New("rejected") }
func (failingPersistable) NewValue() any { return new(int) }

func TestRestoreRollsBackPartialWrite(t *testing.T) {
	_, count, name, _ := newState(t)
	count.Set(1)
	name.Set("before")

	var seen []string
	name.Subscribe(func(s string) { seen = append(seen, s) })

	_, err := applyWrites([]restoreWrite{
		{key: "count", p: count, value: 99},
		{key: "name", p: name, value: "after"},
		{key: "broken", p: failingPersistable{}, value: 0},
	})
	if errorCode(err) != "S206" {
		t.Fatalf("applyWrites error = %v, want S206", err)
	}
	if count.Peek() != 1 || name.Peek() != "before" {
		t.Errorf("after rollback count=%d name=%q, want 1 before", count.Peek(), name.Peek())
	}
	for _, s := range seen {
		if s != "before" {
			t.Errorf("subscriber observed %q during a failed restore", s)
		}
	}
}

func TestDocumentValue(t *testing.T) {
	root, count, _, _ := newState(t)
	count.Set(9)
	doc, _ := Capture(root)

	v, ok, err := doc.Value("count")
	if err != nil || !ok {
		t.Fatalf("Value(count) = %v, %v, %v", v, ok, err)
	}
	if v != uint64(9) {
		t.Errorf("Value(count) = %v (%T), want 9", v, v)
	}
	if _, ok, _ := doc.Value("missing"); ok {
		t.Error("Value(missing) should report false")
	}
}

func TestHeaderString(t *testing.T) {
	h := Header{Version: 1, Compression: CompressionZstd, Size: 2048, Stored: 512}
	s := h.String()
	for _, want := range []string{"v1", "zstd", "2.0 kB", "512 B"} {
		if !strings.Contains(s, want) {
			t.Errorf("Header.String() = %q, missing %q", s, want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCompression(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCompression("brotli"); errorCode(err) != "S202" {
		t.Errorf("ParseCompression(brotli) error = %v, want S202", err)
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"s3":     NewS3Store(newFakeS3(), "bucket", "snapshots/"),
	}
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}
	stores["file"] = fs

	for kind, store := range stores {
		t.Run(kind, func(t *testing.T) {
			src, count, _, _ := newState(t)
			count.Set(11)

			name, err := Save(ctx, store, "", src, CompressionLZ4)
			if err != nil {
				t.Fatalf("Save error = %v", err)
			}
			if !strings.HasPrefix(name, "snap-") {
				t.Errorf("generated name = %q", name)
			}

			dst, dstCount, _, _ := newState(t)
			if _, err := Load(ctx, store, name, dst); err != nil {
				t.Fatalf("Load error = %v", err)
			}
			if dstCount.Peek() != 11 {
				t.Errorf("loaded count = %d, want 11", dstCount.Peek())
			}

			infos, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List error = %v", err)
			}
			if len(infos) != 1 || infos[0].Name != name || infos[0].Size == 0 {
				t.Errorf("List() = %+v", infos)
			}

			if err := store.Delete(ctx, name); err != nil {
				t.Fatalf("Delete error = %v", err)
			}
			if _, err := store.Get(ctx, name); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete error = %v, want ErrNotFound", err)
			}
			if err := store.Delete(ctx, name); err != nil {
				t.Errorf("deleting a missing snapshot error = %v", err)
			}
		})
	}
}

func TestStoresRejectBadNames(t *testing.T) {
	ctx := context.Background()
	fs, _ := NewFileStore(t.TempDir())
	for _, store := range []Store{NewMemoryStore(), fs, NewS3Store(newFakeS3(), "b", "")} {
		for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
			if err := store.Put(ctx, name, []byte("x")); errorCode(err) != "S205" {
				t.Errorf("%T.Put(%q) error = %v, want S205", store, name, err)
			}
		}
	}
}

func TestFileStoreAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Put(ctx, "a", []byte("first")); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	if err := store.Put(ctx, "a", []byte("second")); err != nil {
		t.Fatalf("Put error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "a"+fileExt {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only a%s", names, fileExt)
	}

	data, _ := store.Get(ctx, "a")
	if string(data) != "second" {
		t.Errorf("Get = %q, want second", data)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("abc")
	_ = store.Put(ctx, "a", data)
	data[0] = 'z'

	got, _ := store.Get(ctx, "a")
	if string(got) != "abc" {
		t.Errorf("Get = %q, want abc", got)
	}
}

func errorCode(err error) string {
	var e *rerrors.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
