package opensource

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bStatus = []byte("status") // cache key -> cachedStatus

const latestKey = "latest"

// Cache persists status responses across restarts so the GitHub rate limit is
// hit at most once per TTL and site commit.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type CacheOptions struct {
	Path string // e.g. ".techblog/status.db"
	TTL  time.Duration
}

type cachedStatus struct {
	StoredAt time.Time `json:"storedAt"`
	Status   Status    `json:"status"`
}

func OpenCache(opt CacheOptions) (*Cache, error) {
	if opt.Path == "" {
		return nil, errors.New("opensource: missing cache path")
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bStatus)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db, ttl: opt.TTL, now: time.Now}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns a stored status younger than the TTL.
func (c *Cache) Get(siteCommit string) (Status, bool, error) {
	var entry cachedStatus
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bStatus)
		if b == nil {
			return nil
		}
		v := b.Get(cacheKey(siteCommit))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &entry)
	})
	if err != nil || !found {
		return Status{}, false, err
	}
	if c.ttl > 0 && c.now().Sub(entry.StoredAt) > c.ttl {
		return Status{}, false, nil
	}
	return entry.Status, true, nil
}

func (c *Cache) Put(siteCommit string, st Status) error {
	v, err := json.Marshal(cachedStatus{StoredAt: c.now(), Status: st})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bStatus)
		if err != nil {
			return err
		}
		return b.Put(cacheKey(siteCommit), v)
	})
}

func cacheKey(siteCommit string) []byte {
	if siteCommit == "" {
		return []byte(latestKey)
	}
	return []byte("site:" + siteCommit)
}
