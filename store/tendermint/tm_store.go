package tendermint

import (
	"github.com/pkg/errors"
	tmdb "github.com/tendermint/tm-db"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tradeport-labs/gateway/store"
	"github.com/tradeport-labs/gateway/store/models"
)

var (
	prefixTx    = []byte("tx")
	prefixPayer = []byte("payer")
)

// TMStore is a Store implementation using Tendermint tm-db. Constructed
// over a MemDB it is purely in-memory, which is all the gateway needs.
type TMStore struct {
	nsTx    *tmdb.PrefixDB
	nsPayer *tmdb.PrefixDB
}

var _ store.Store = (*TMStore)(nil)

// NewTMStore creates a new TMStore over the given database.
func NewTMStore(db tmdb.DB) *TMStore {
	return &TMStore{
		nsTx:    tmdb.NewPrefixDB(db, prefixTx),
		nsPayer: tmdb.NewPrefixDB(db, prefixPayer),
	}
}

func (s *TMStore) PutTxRecord(record *models.TxRecord) error {
	if record.Signature == "" {
		return errors.New("record has no signature")
	}
	err := set(s.nsTx, []byte(record.Signature), record)
	if err != nil {
		return errors.Wrap(err, "PutTxRecord failed")
	}
	if record.Payer != "" {
		indexKey := concatKeys([]byte(record.Payer), []byte("/"), []byte(record.Signature))
		err = s.nsPayer.Set(indexKey, []byte(record.Signature))
		if err != nil {
			return errors.Wrap(err, "PutTxRecord failed indexing payer")
		}
	}
	return nil
}

func (s *TMStore) GetTxRecord(signature string) (*models.TxRecord, error) {
	record := &models.TxRecord{}
	err := get(s.nsTx, []byte(signature), record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *TMStore) GetTxRecordsByPayer(payer string) ([]*models.TxRecord, error) {
	prefix := concatKeys([]byte(payer), []byte("/"))
	iter, err := tmdb.IteratePrefix(s.nsPayer, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "GetTxRecordsByPayer failed")
	}
	defer iter.Close()

	var records []*models.TxRecord
	for ; iter.Valid(); iter.Next() {
		record, getErr := s.GetTxRecord(string(iter.Value()))
		if getErr != nil {
			return nil, errors.Wrap(getErr, "GetTxRecordsByPayer failed loading record")
		}
		records = append(records, record)
	}
	return records, nil
}

// get will retrieve the binary data under the given key from the DB and decode it into the given
// entity. The provided entity needs to be a pointer to an initialized entity of the correct type.
func get(db tmdb.DB, key []byte, entity interface{}) error {
	value, err := db.Get(key)
	if err != nil {
		return errors.Wrap(err, "could not get data")
	}
	if value == nil {
		return store.ErrNotFound
	}
	err = msgpack.Unmarshal(value, entity)
	if err != nil {
		return errors.Wrap(err, "could not decode data")
	}
	return nil
}

// set will encode the given entity using MessagePack and will insert the resulting binary data in
// the DB under the provided key.
func set(db tmdb.DB, key []byte, entity interface{}) error {
	val, err := msgpack.Marshal(entity)
	if err != nil {
		return errors.Wrap(err, "could not encode entity")
	}
	err = db.Set(key, val)
	if err != nil {
		return errors.Wrap(err, "could not store data")
	}
	return nil
}

func concatKeys(parts ...[]byte) []byte {
	var res []byte
	for _, p := range parts {
		res = append(res, p...)
	}
	return res
}
