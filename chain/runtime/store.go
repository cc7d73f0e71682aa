package runtime

import (
	"sync"

	"finova/chain/types"

	"github.com/syndtr/goleveldb/leveldb"
)

// Store is an account key-value store backed by goleveldb, with an
// in-memory read cache — the same cache-then-persist shape as
// StateDB.GetBalance/SetBalance (chain/node/blockchain.go), generalized
// from "address -> balance" to "namespace + pubkey -> raw bytes". The
// bytes are stored as given, with no versioning or encoding of their
// own; cmd/finova-node uses it to keep CORE's JSON snapshot.
type Store struct {
	db    *leveldb.DB
	mu    sync.RWMutex
	cache map[string][]byte
}

// OpenStore opens (creating if absent) a leveldb database at path.
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func accountKey(namespace string, id types.Pubkey) []byte {
	key := make([]byte, 0, len(namespace)+1+len(id))
	key = append(key, namespace...)
	key = append(key, ':')
	key = append(key, id[:]...)
	return key
}

// Get returns the raw bytes stored for (namespace, id), or (nil, false)
// if no account has been written there yet.
func (s *Store) Get(namespace string, id types.Pubkey) ([]byte, bool) {
	key := accountKey(namespace, id)

	s.mu.RLock()
	if cached, ok := s.cache[string(key)]; ok {
		s.mu.RUnlock()
		if cached == nil {
			return nil, false
		}
		return append([]byte(nil), cached...), true
	}
	s.mu.RUnlock()

	data, err := s.db.Get(key, nil)
	if err != nil {
		s.mu.Lock()
		s.cache[string(key)] = nil
		s.mu.Unlock()
		return nil, false
	}

	s.mu.Lock()
	s.cache[string(key)] = append([]byte(nil), data...)
	s.mu.Unlock()
	return data, true
}

// Put persists data for (namespace, id), updating the read cache and
// writing through to leveldb.
func (s *Store) Put(namespace string, id types.Pubkey, data []byte) error {
	key := accountKey(namespace, id)
	if err := s.db.Put(key, data, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[string(key)] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Has reports whether an account has been written at (namespace, id).
func (s *Store) Has(namespace string, id types.Pubkey) bool {
	_, ok := s.Get(namespace, id)
	return ok
}
