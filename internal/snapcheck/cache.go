package snapcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"diagsnap/internal/normalize"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// Digest identifies one (raw output, snapshot, context) combination.
type Digest [sha256.Size]byte

// cachePayload stores a previously computed verdict so repeated runs over an
// unchanged tree skip the normalization pass.
type cachePayload struct {
	Schema    uint16
	Matched   bool
	Preferred string
	Expected  string
}

// DiskCache persists check verdicts under a directory, one msgpack file per
// digest. Safe for concurrent use; a nil *DiskCache is a valid no-op cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache rooted at dir, creating it as
// needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "checks", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *cachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace so concurrent readers never see a partial file.
	return os.Rename(f.Name(), p)
}

// Get reads a payload from the disk cache. The boolean is false on a miss.
func (c *DiskCache) Get(key Digest, out *cachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "checks"))
}

// resultKey hashes everything a verdict depends on: the raw bytes, the
// snapshot bytes, and the redaction context.
func resultKey(raw, snapshot []byte, nctx normalize.Context) Digest {
	h := sha256.New()
	h.Write(raw)
	h.Write([]byte{0})
	h.Write(snapshot)
	h.Write([]byte{0})
	h.Write([]byte(nctx.Crate))
	h.Write([]byte{0})
	h.Write([]byte(nctx.SourceDir))
	h.Write([]byte{0})
	h.Write([]byte(nctx.Workspace))

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
