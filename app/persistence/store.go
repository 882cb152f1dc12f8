package persistence

// Store combines binary, job and config stores sharing one database
type Store struct {
	*BinaryStore
	*JobStore
	*ConfigStore
	db *DB
}

// New makes store on top of opened and migrated database
func New(db *DB, fc FileCache) *Store {
	binaries := NewBinaryStore(db, fc)
	return &Store{
		BinaryStore: binaries,
		JobStore:    NewJobStore(db, binaries),
		ConfigStore: NewConfigStore(db),
		db:          db,
	}
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
