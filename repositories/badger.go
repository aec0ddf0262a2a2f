package repositories

import (
	"coin-chat/errors"
	"encoding/json"
	stderrors "errors"

	"github.com/dgraph-io/badger/v4"
)

// maxConflictRetries bounds how often a read-write transaction is replayed
// after Badger detected a conflicting commit on a key it read.
const maxConflictRetries = 16

// updateWithRetry runs fn in a read-write transaction and replays it on conflict.
// fn must be idempotent with respect to its own reads.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return errors.ErrTransferContention
}

// getJSON loads key into out. found is false when the key is absent.
func getJSON(txn *badger.Txn, key []byte, out any) (bool, error) {
	item, err := txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, bytes)
}

// scanJSON decodes every value under prefix, in key order.
func scanJSON[T any](txn *badger.Txn, prefix []byte) ([]T, error) {
	var out []T
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
