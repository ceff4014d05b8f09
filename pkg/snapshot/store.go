package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

// ErrNotFound is returned by stores for unknown snapshot names.
var ErrNotFound error = errors.New("S204")

// Info describes a stored snapshot.
type Info struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store persists encoded snapshots by name.
type Store interface {
	// Put stores data under name, replacing any previous snapshot.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the snapshot stored under name, or an error matching
	// ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored snapshots sorted by name.
	List(ctx context.Context) ([]Info, error)
}

func notFound(name string) error {
	return errors.New("S204").WithSubject(name)
}

// validName rejects names that could escape a store's namespace.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return errors.New("S205").WithSubjectf("invalid snapshot name %q", name)
	}
	return nil
}

// NewName returns a fresh snapshot name.
func NewName() string {
	return "snap-" + uuid.NewString()
}

// Save captures owner, encodes it with c and stores it under name. An
// empty name is replaced by NewName(). It returns the name used.
func Save(ctx context.Context, store Store, name string, owner *reactive.Owner, c Compression) (string, error) {
	if name == "" {
		name = NewName()
	}
	if err := validName(name); err != nil {
		return "", err
	}
	doc, err := Capture(owner)
	if err != nil {
		return "", err
	}
	data, err := Encode(doc, c)
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Load fetches the snapshot stored under name and restores it into owner.
func Load(ctx context.Context, store Store, name string, owner *reactive.Owner) (Report, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return Report{}, err
	}
	doc, _, err := Decode(data)
	if err != nil {
		return Report{}, err
	}
	return Restore(owner, doc)
}
