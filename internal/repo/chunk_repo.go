package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/doctriage/internal/model"
)

// ChunkRepo reads the per-document chunk tables produced by the upload
// pipeline (chunks_<doc_id>).
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// nullVector scans a pgvector column that may be NULL.
type nullVector struct {
	vec   pgvector.Vector
	valid bool
}

func (n *nullVector) Scan(src interface{}) error {
	if src == nil {
		n.valid = false
		return nil
	}
	if err := n.vec.Scan(src); err != nil {
		return err
	}
	n.valid = true
	return nil
}

func chunkTable(docID int64) string {
	return pq.QuoteIdentifier(fmt.Sprintf("chunks_%d", docID))
}

// TableExists reports whether the document has a chunk table at all. A
// document uploaded but never chunked simply has none.
func (r *ChunkRepo) TableExists(ctx context.Context, docID int64) (bool, error) {
	const query = `SELECT to_regclass($1)`
	var reg sql.NullString
	if err := r.db.QueryRowContext(ctx, query, fmt.Sprintf("public.chunks_%d", docID)).Scan(&reg); err != nil {
		return false, err
	}
	return reg.Valid, nil
}

// ListChunks returns the document's chunks ordered by chunk id. A
// missing chunk table yields an empty list, not an error.
func (r *ChunkRepo) ListChunks(ctx context.Context, docID int64, limit int) ([]model.Chunk, error) {
	exists, err := r.TableExists(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT id, chunk, embedding FROM %s ORDER BY id ASC`, chunkTable(docID))
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []model.Chunk
	for rows.Next() {
		var ch model.Chunk
		var emb nullVector
		if err := rows.Scan(&ch.ID, &ch.Text, &emb); err != nil {
			return nil, err
		}
		if emb.valid {
			ch.Embedding = emb.vec.Slice()
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// ListChunkTables lists every doc id that has a chunk table.
func (r *ChunkRepo) ListChunkTables(ctx context.Context) ([]int64, error) {
	const query = `
		SELECT regexp_replace(table_name, '^chunks_', '')::bigint AS doc_id
		  FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name ~ '^chunks_[0-9]+$'
		 ORDER BY 1
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
