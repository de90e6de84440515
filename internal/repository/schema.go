package repository

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

const (
	documentsTable = "documents"
	pagesTable     = "pages"
)

// EnsureSchema creates the tables and indexes when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	d := entsql.Dialect(s.Dialect())
	stmts := []entsql.Querier{
		d.CreateTable(documentsTable).IfNotExists().
			Columns(
				entsql.Column("id").Type("VARCHAR(36)").Attr("NOT NULL"),
				entsql.Column("source_path").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("content_hash").Type("VARCHAR(64)").Attr("NOT NULL"),
				entsql.Column("page_count").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("failed_pages").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("processed_at").Type("VARCHAR(40)").Attr("NOT NULL"),
			).
			PrimaryKey("id"),
		d.CreateTable(pagesTable).IfNotExists().
			Columns(
				entsql.Column("document_id").Type("VARCHAR(36)").Attr("NOT NULL"),
				entsql.Column("page").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("code").Type("VARCHAR(8)"),
				entsql.Column("deposit_date").Type("VARCHAR(10)"),
				entsql.Column("amount_minor").Type("BIGINT"),
				entsql.Column("ntpn").Type("VARCHAR(16)"),
				entsql.Column("missing_fields").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("warning_message").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("error").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("needs_review").Type("BOOLEAN").Attr("NOT NULL"),
				entsql.Column("confidence").Type("DOUBLE PRECISION").Attr("NOT NULL"),
				entsql.Column("preview_image").Type("TEXT").Attr("NOT NULL"),
			).
			PrimaryKey("document_id", "page").
			ForeignKeys(
				entsql.ForeignKey().Columns("document_id").
					Reference(entsql.Reference().Table(documentsTable).Columns("id")).
					OnDelete("CASCADE"),
			),
		d.CreateIndex("pages_deposit_date").IfNotExists().Table(pagesTable).Columns("deposit_date"),
		d.CreateIndex("documents_content_hash").IfNotExists().Table(documentsTable).Columns("content_hash"),
	}
	for _, st := range stmts {
		query, args := st.Query()
		if err := s.drv.Exec(ctx, query, args, nil); err != nil {
			s.logger.Error("schema migration failed", "query", query, "error", err)
			return fmt.Errorf("%w: ensure schema: %w", common.ErrDatabase, err)
		}
	}
	s.logger.Debug("schema ready", "dialect", s.Dialect())
	return nil
}
