package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"

	"github.com/vango-dev/signals/internal/errors"
)

// Version is the current snapshot format version.
const Version uint8 = 1

// magic starts every snapshot.
var magic = [4]byte{'R', 'S', 'N', 'P'}

// Document is the decoded content of a snapshot.
type Document struct {
	// Version is the format version the document was written with.
	Version uint8 `cbor:"version"`

	// Created is when the snapshot was captured.
	Created time.Time `cbor:"created"`

	// Signals maps persist keys to CBOR-encoded values.
	Signals map[string]cbor.RawMessage `cbor:"signals"`
}

// Keys returns the persist keys in the document, sorted.
func (d *Document) Keys() []string {
	return sortedKeys(d.Signals)
}

// Value decodes the value stored under key into a generic Go value.
func (d *Document) Value(key string) (any, bool, error) {
	raw, ok := d.Signals[key]
	if !ok {
		return nil, false, nil
	}
	var v any
	if err := decMode.Unmarshal(raw, &v); err != nil {
		return nil, true, err
	}
	return v, true, nil
}

// Header is the fixed part of an encoded snapshot.
type Header struct {
	Version     uint8
	Compression Compression
	Size        uint64
	Digest      Digest

	// Stored is the size of the payload as stored, after compression.
	Stored int
}

// String summarizes the header for humans.
func (h Header) String() string {
	return fmt.Sprintf("v%d %s %s (%s stored) %s",
		h.Version, h.Compression,
		humanize.Bytes(h.Size), humanize.Bytes(uint64(h.Stored)),
		h.Digest.String()[:16])
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): the same
// document always encodes to the same bytes, so equal states have equal
// digests.
var encMode cbor.EncMode

// decMode decodes generic values into map[string]any rather than the
// CBOR default map[any]any, which encoding/json cannot handle.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes doc with the requested compression. When
// compression would not shrink the payload it is stored uncompressed.
func Encode(doc *Document, c Compression) ([]byte, error) {
	payload, err := encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	stored, used, err := compress(payload, c)
	if err != nil {
		return nil, err
	}
	digest := digestOf(payload)

	var buf bytes.Buffer
	buf.Grow(len(magic) + 2 + binary.MaxVarintLen64 + len(digest) + len(stored))
	buf.Write(magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(byte(used))
	buf.Write(binary.AppendUvarint(nil, uint64(len(payload))))
	buf.Write(digest[:])
	buf.Write(stored)
	return buf.Bytes(), nil
}

// ReadHeader parses the header of an encoded snapshot without
// decompressing or verifying the payload.
func ReadHeader(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < len(magic)+2 || !bytes.Equal(data[:len(magic)], magic[:]) {
		return h, nil, errors.New("S200")
	}
	rest := data[len(magic):]

	h.Version = rest[0]
	if h.Version != Version {
		return h, nil, errors.New("S201").WithSubjectf("version %d", h.Version)
	}
	h.Compression = Compression(rest[1])
	rest = rest[2:]

	size, n := binary.Uvarint(rest)
	if n <= 0 {
		return h, nil, errors.New("S200").WithDetail("The payload size is malformed.")
	}
	h.Size = size
	rest = rest[n:]

	if len(rest) < len(h.Digest) {
		return h, nil, errors.New("S200").WithDetail("The snapshot is truncated.")
	}
	copy(h.Digest[:], rest)
	rest = rest[len(h.Digest):]
	h.Stored = len(rest)
	return h, rest, nil
}

// Decode parses, decompresses and verifies an encoded snapshot.
func Decode(data []byte) (*Document, Header, error) {
	h, stored, err := ReadHeader(data)
	if err != nil {
		return nil, h, err
	}
	if h.Size > maxPayloadSize {
		return nil, h, errors.New("S200").WithDetail(
			fmt.Sprintf("The payload claims %s, more than the %s limit.",
				humanize.Bytes(h.Size), humanize.Bytes(maxPayloadSize)))
	}

	payload, err := decompress(stored, h.Compression, int(h.Size))
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			return nil, h, e
		}
		return nil, h, errors.New("S203").Wrap(err)
	}
	if got := digestOf(payload); got != h.Digest {
		return nil, h, errors.New("S203").WithSubject(got.String())
	}

	var doc Document
	if err := decMode.Unmarshal(payload, &doc); err != nil {
		return nil, h, errors.New("S200").Wrap(err)
	}
	return &doc, h, nil
}

// maxPayloadSize bounds the allocation a header can request.
const maxPayloadSize = 256 << 20
