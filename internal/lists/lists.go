// Package lists keeps per-requester favourites and blacklists in a JSON file.
package lists

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spigell/vkinder/internal/profile"
)

type Kind string

const (
	Favourites Kind = "favourites"
	Blacklist  Kind = "blacklist"
)

type Entry struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"added_at"`
}

// NewEntry describes a profile for storing in a list.
func NewEntry(p *profile.Profile) *Entry {
	return &Entry{
		ID:      p.ID,
		Name:    p.Name(),
		URL:     p.URL(),
		AddedAt: time.Now().UTC(),
	}
}

type Owner struct {
	Favourites []*Entry `json:"favourites"`
	Blacklist  []*Entry `json:"blacklist"`
}

func (o *Owner) list(kind Kind) *[]*Entry {
	switch kind {
	case Favourites:
		return &o.Favourites
	case Blacklist:
		return &o.Blacklist
	default:
		return nil
	}
}

// Lists is safe for concurrent use.
type Lists struct {
	mu     sync.Mutex
	Owners map[int64]*Owner `json:"owners"`
}

func New() *Lists {
	return &Lists{Owners: make(map[int64]*Owner)}
}

// FromFile loads lists from path. A missing or empty file gives empty lists.
func FromFile(path string) (*Lists, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return New(), nil
	}

	l := New()
	if err := json.NewDecoder(file).Decode(l); err != nil {
		return nil, fmt.Errorf("decoding lists file %q: %w", path, err)
	}
	if l.Owners == nil {
		l.Owners = make(map[int64]*Owner)
	}
	return l, nil
}

// ToFile writes lists to path through a temp file and a rename, so a failed
// write leaves the previous file intact.
func (l *Lists) ToFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lists: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp lists file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing lists: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing lists: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp lists file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting lists file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing lists file: %w", err)
	}

	success = true
	return nil
}

// Add puts an entry on a list and reports whether it was added.
// Blocking someone also drops them from favourites, and the other way round.
func (l *Lists) Add(requester int64, kind Kind, e *Entry) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner := l.owner(requester)
	list := owner.list(kind)
	if list == nil {
		return false, fmt.Errorf("unknown list %q", kind)
	}

	if containsID(*list, e.ID) {
		return false, nil
	}
	*list = append(*list, e)

	switch kind {
	case Blacklist:
		owner.Favourites = removeID(owner.Favourites, e.ID)
	case Favourites:
		owner.Blacklist = removeID(owner.Blacklist, e.ID)
	}
	return true, nil
}

// Remove deletes an id from a list and reports whether it was there.
func (l *Lists) Remove(requester int64, kind Kind, id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, ok := l.Owners[requester]
	if !ok {
		return false
	}
	list := owner.list(kind)
	if list == nil || !containsID(*list, id) {
		return false
	}
	*list = removeID(*list, id)
	return true
}

// Entries returns a copy of a list in insertion order.
func (l *Lists) Entries(requester int64, kind Kind) []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, ok := l.Owners[requester]
	if !ok {
		return nil
	}
	list := owner.list(kind)
	if list == nil {
		return nil
	}
	return slices.Clone(*list)
}

func (l *Lists) IDs(requester int64, kind Kind) []int64 {
	entries := l.Entries(requester, kind)
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func (l *Lists) Has(requester int64, kind Kind, id int64) bool {
	return slices.Contains(l.IDs(requester, kind), id)
}

func (l *Lists) owner(requester int64) *Owner {
	if l.Owners == nil {
		l.Owners = make(map[int64]*Owner)
	}
	owner, ok := l.Owners[requester]
	if !ok {
		owner = &Owner{}
		l.Owners[requester] = owner
	}
	return owner
}

func containsID(entries []*Entry, id int64) bool {
	return slices.ContainsFunc(entries, func(e *Entry) bool { return e.ID == id })
}

func removeID(entries []*Entry, id int64) []*Entry {
	return slices.DeleteFunc(entries, func(e *Entry) bool { return e.ID == id })
}
