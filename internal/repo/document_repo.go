package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/doctriage/internal/model"
	"github.com/xxxsen/doctriage/internal/pkg/dbutil"
	appErr "github.com/xxxsen/doctriage/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, document_name, canonical_slug, top_entity, org_variant, state_variant, confidence, status"

func scanDocument(row interface{ Scan(...interface{}) error }) (*model.Document, error) {
	var doc model.Document
	var slug, topEntity, orgVariant, stateVariant sql.NullString
	var confidence sql.NullFloat64
	err := row.Scan(&doc.ID, &doc.Name, &slug, &topEntity, &orgVariant, &stateVariant, &confidence, &doc.Status)
	if err != nil {
		return nil, err
	}
	if slug.Valid {
		doc.CanonicalSlug = &slug.String
	}
	if topEntity.Valid {
		doc.TopEntity = &topEntity.String
	}
	if orgVariant.Valid {
		doc.OrgVariant = &orgVariant.String
	}
	if stateVariant.Valid {
		doc.StateVariant = &stateVariant.String
	}
	if confidence.Valid {
		doc.Confidence = &confidence.Float64
	}
	return &doc, nil
}

// ListDocuments returns documents ordered by id, optionally filtered by
// status and capped at limit.
func (r *DocumentRepo) ListDocuments(ctx context.Context, status string, limit int) ([]*model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "id asc",
	}
	if status != "" {
		where["status"] = status
	}
	if limit > 0 {
		where["_limit"] = []uint{0, uint(limit)}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, strings.Split(documentColumns, ", "))
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// UpdateClassification overwrites the mutable classification fields of
// one document. Re-running a batch is idempotent: the same inputs write
// the same values.
func (r *DocumentRepo) UpdateClassification(ctx context.Context, docID int64, slug, topEntity, orgVariant, stateVariant *string, confidence *float64, status string) error {
	const query = `
		UPDATE documents
		   SET canonical_slug = $1,
		       top_entity = $2,
		       org_variant = $3,
		       state_variant = $4,
		       confidence = $5,
		       status = $6,
		       updated_at = now()
		 WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query, slug, topEntity, orgVariant, stateVariant, confidence, status, docID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// FilenameLowercaseCounts is the corpus-wide duplicate-filename
// histogram, computed once per batch for filename-weight damping.
func (r *DocumentRepo) FilenameLowercaseCounts(ctx context.Context) (map[string]int, error) {
	const query = `SELECT lower(document_name), COUNT(*) FROM documents GROUP BY 1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var cnt int
		if err := rows.Scan(&name, &cnt); err != nil {
			return nil, err
		}
		counts[name] = cnt
	}
	return counts, rows.Err()
}
