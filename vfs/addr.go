package vfs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotMounted is returned when an address resolves to no mounted filesystem.
var ErrNotMounted = errors.New("no filesystem mounted for address")

// Addr is a backend-neutral address. It gives local paths, memory mounts,
// and remote objects one naming scheme:
//
//	file:///home/user/notes     local disk
//	mem://scratch/tmp.txt       in-memory mount named "scratch"
//	s3://bucket/notes/todo.md   object in a remote bucket
//
// A string without a scheme is treated as a local path.
type Addr struct {
	// Scheme is "file", "mem", or "s3".
	Scheme string

	// Host names the mount within the scheme: the bucket for s3, the mount
	// name for mem. Empty for file.
	Host string

	// Path is the slash-separated path relative to the mount root.
	Path string
}

// ParseAddr parses an address string. Scheme-less input is a local path.
func ParseAddr(s string) (Addr, error) {
	if s == "" {
		return Addr{}, fmt.Errorf("parse addr: empty address")
	}

	scheme, rest, found := strings.Cut(s, "://")
	if !found {
		return Addr{Scheme: "file", Path: s}, nil
	}
	if scheme == "" {
		return Addr{}, fmt.Errorf("parse addr %q: missing scheme", s)
	}

	switch scheme {
	case "file":
		// file URLs carry no authority; the rest is the path
		return Addr{Scheme: "file", Path: "/" + strings.TrimPrefix(rest, "/")}, nil
	case "mem", "s3":
		host, path, _ := strings.Cut(rest, "/")
		if host == "" {
			return Addr{}, fmt.Errorf("parse addr %q: %s address needs a mount name", s, scheme)
		}
		return Addr{Scheme: scheme, Host: host, Path: path}, nil
	default:
		return Addr{}, fmt.Errorf("parse addr %q: unknown scheme %q", s, scheme)
	}
}

// String renders the address back to its canonical form.
func (a Addr) String() string {
	if a.Scheme == "" || a.Scheme == "file" {
		return a.Path
	}
	if a.Path == "" {
		return a.Scheme + "://" + a.Host
	}
	return a.Scheme + "://" + a.Host + "/" + strings.TrimPrefix(a.Path, "/")
}

// key identifies the mount an address belongs to.
func (a Addr) key() string {
	if a.Host == "" {
		return a.Scheme
	}
	return a.Scheme + "://" + a.Host
}

// Mounts maps address keys to mounted filesystems. It is safe for concurrent
// use; the explorer, server, and transfer queue share one registry.
type Mounts struct {
	mu sync.RWMutex
	m  map[string]FS
}

// NewMounts returns an empty mount registry.
func NewMounts() *Mounts {
	return &Mounts{m: make(map[string]FS)}
}

// Mount registers fsys under the given scheme/host key, for example "file"
// or "s3://bucket". Remounting a key replaces the previous filesystem.
func (m *Mounts) Mount(key string, fsys FS) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = fsys
}

// Resolve parses addr and returns the mounted filesystem together with the
// path relative to it. Returns ErrNotMounted if no mount matches.
func (m *Mounts) Resolve(addr string) (FS, string, error) {
	a, err := ParseAddr(addr)
	if err != nil {
		return nil, "", err
	}

	m.mu.RLock()
	fsys, ok := m.m[a.key()]
	m.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("resolve %q: %w", addr, ErrNotMounted)
	}

	return fsys, a.Path, nil
}

// Keys returns the registered mount keys in sorted order.
func (m *Mounts) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
