package repo

import "database/sql"

// Store bundles document and chunk access behind one value satisfying
// both the classify.Store and entity.Store contracts.
type Store struct {
	*DocumentRepo
	*ChunkRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DocumentRepo: NewDocumentRepo(db),
		ChunkRepo:    NewChunkRepo(db),
	}
}
