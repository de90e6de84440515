package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
)

// timeLayout keeps processed_at sortable as text on every dialect.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StoredRecord is a persisted page record with its document context.
type StoredRecord struct {
	DocumentID  uuid.UUID
	Source      string
	ProcessedAt time.Time
	pipeline.Record
}

type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc pipeline.DocumentResult, contentHash string) error
	ListRecords(ctx context.Context, from, to *civil.Date) ([]StoredRecord, error)
}

var _ DocumentRepository = (*Store)(nil)

// SaveDocument stores the document and all of its page records in one transaction.
func (s *Store) SaveDocument(ctx context.Context, doc pipeline.DocumentResult, contentHash string) (err error) {
	d := entsql.Dialect(s.Dialect())
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", "document_id", doc.DocumentID, "error", rbErr)
			}
		}
	}()

	query, args := d.Insert(documentsTable).
		Columns("id", "source_path", "content_hash", "page_count", "failed_pages", "processed_at").
		Values(doc.DocumentID.String(), doc.Source, contentHash, len(doc.Pages), doc.Summary.Failed, s.now().UTC().Format(timeLayout)).
		Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		s.logger.Error("failed to insert document", "document_id", doc.DocumentID, "error", err)
		return fmt.Errorf("%w: insert document: %w", common.ErrDatabase, err)
	}

	if len(doc.Pages) > 0 {
		ins := d.Insert(pagesTable).Columns(
			"document_id", "page", "code", "deposit_date", "amount_minor", "ntpn",
			"missing_fields", "warning_message", "error", "needs_review", "confidence", "preview_image",
		)
		for _, rec := range pipeline.ToRecords(doc) {
			var amount any
			if rec.Amount != nil {
				amount = rec.Amount.Minor()
			}
			ins.Values(
				doc.DocumentID.String(), rec.Page, nullable(rec.Code), nullable(rec.Date), amount, nullable(rec.NTPN),
				strings.Join(rec.MissingFields, ","), rec.WarningMessage, rec.Error, rec.NeedsReview, rec.Confidence, rec.PreviewImage,
			)
		}
		query, args = ins.Query()
		if err = tx.Exec(ctx, query, args, nil); err != nil {
			s.logger.Error("failed to insert pages", "document_id", doc.DocumentID, "error", err)
			return fmt.Errorf("%w: insert pages: %w", common.ErrDatabase, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	s.logger.Info("saved document", "document_id", doc.DocumentID, "pages", len(doc.Pages))
	return nil
}

// ListRecords returns stored records in processing order. With a date window only pages
// whose deposit date falls inside it (inclusive) are returned.
func (s *Store) ListRecords(ctx context.Context, from, to *civil.Date) ([]StoredRecord, error) {
	d := entsql.Dialect(s.Dialect())
	p := d.Table(pagesTable).As("p")
	doc := d.Table(documentsTable).As("d")
	sel := d.Select(
		p.C("document_id"), doc.C("source_path"), doc.C("processed_at"),
		p.C("page"), p.C("code"), p.C("deposit_date"), p.C("amount_minor"), p.C("ntpn"),
		p.C("missing_fields"), p.C("warning_message"), p.C("error"), p.C("needs_review"),
		p.C("confidence"), p.C("preview_image"),
	).
		From(p).
		Join(doc).On(p.C("document_id"), doc.C("id"))
	if from != nil {
		sel.Where(entsql.GTE(p.C("deposit_date"), from.String()))
	}
	if to != nil {
		sel.Where(entsql.LTE(p.C("deposit_date"), to.String()))
	}
	sel.OrderBy(doc.C("processed_at"), p.C("document_id"), p.C("page"))

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		s.logger.Error("failed to list records", "error", err)
		return nil, fmt.Errorf("%w: list records: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan record: %w", common.ErrDatabase, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func scanRecord(rows *entsql.Rows) (StoredRecord, error) {
	var (
		rec                StoredRecord
		docID, processedAt string
		code, date, ntpn   sql.NullString
		amount             sql.NullInt64
		missing            string
	)
	if err := rows.Scan(
		&docID, &rec.Source, &processedAt,
		&rec.Page, &code, &date, &amount, &ntpn,
		&missing, &rec.WarningMessage, &rec.Error, &rec.NeedsReview,
		&rec.Confidence, &rec.PreviewImage,
	); err != nil {
		return rec, err
	}
	id, err := uuid.Parse(docID)
	if err != nil {
		return rec, err
	}
	rec.DocumentID = id
	if rec.ProcessedAt, err = time.Parse(timeLayout, processedAt); err != nil {
		return rec, err
	}
	rec.Code, rec.Date, rec.NTPN = code.String, date.String, ntpn.String
	if amount.Valid {
		a := normalize.AmountFromMinor(amount.Int64)
		rec.Amount = &a
	}
	if missing != "" {
		rec.MissingFields = strings.Split(missing, ",")
	}
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// IsPostgres reports whether the store runs against postgres.
func (s *Store) IsPostgres() bool { return s.Dialect() == dialect.Postgres }
