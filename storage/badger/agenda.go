package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage"
)

// AgendaRepository implements storage.AgendaRepository for BadgerDB.
type AgendaRepository struct {
	backend *Backend
}

var _ storage.AgendaRepository = (*AgendaRepository)(nil)

// NewAgendaRepository creates a new AgendaRepository.
func NewAgendaRepository(backend *Backend) *AgendaRepository {
	return &AgendaRepository{backend: backend}
}

// Close releases repository resources. The backend is closed separately.
func (r *AgendaRepository) Close() error {
	return nil
}

// AddAgendas adds one or more agenda records to storage.
func (r *AgendaRepository) AddAgendas(ctx context.Context, records ...*core.AgendaRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := record.Validate(); err != nil {
				return err
			}
			key := makeAgendaKey(record.AgendaID)
			if err := tx.Set(key, storage.MarshalAgendaRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAgenda retrieves a single agenda record by ID.
func (r *AgendaRepository) GetAgenda(ctx context.Context, agendaID string) (*core.AgendaRecord, error) {
	var record *core.AgendaRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readAgenda(tx, makeAgendaKey(agendaID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetAgendas retrieves multiple agenda records by their IDs.
// Returns only the records that exist.
func (r *AgendaRepository) GetAgendas(ctx context.Context, agendaIDs ...string) ([]*core.AgendaRecord, error) {
	records := make([]*core.AgendaRecord, 0, len(agendaIDs))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, agendaID := range agendaIDs {
			record, err := r.readAgenda(tx, makeAgendaKey(agendaID))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountAgendas returns the number of stored agenda records.
func (r *AgendaRepository) CountAgendas(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(agendaPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readAgenda reads and unmarshals an agenda record within a transaction.
// Returns nil without error when the key does not exist.
func (r *AgendaRepository) readAgenda(tx *badger.Txn, key []byte) (*core.AgendaRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.AgendaRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalAgendaRecord(val)
		return err
	})
	return record, err
}
