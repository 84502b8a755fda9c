// Package report_repo stores report snapshots on PostgreSQL. Large
// snapshots are zstd-compressed before they hit the table.
package report_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"opsboard/internal/core/apperror"
	"opsboard/internal/domain/analytics"
	"opsboard/internal/infrastructure/storage/postgres"
)

const reportTable = "saved_reports"

// compressThreshold is the snapshot size at which zstd kicks in.
const compressThreshold = 10 * 1024

type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// storedReport is the storage shape; Snapshot may be compressed.
type storedReport struct {
	ID              uuid.UUID       `db:"id"`
	Kind            string          `db:"kind"`
	Title           string          `db:"title"`
	Params          json.RawMessage `db:"params"`
	Snapshot        []byte          `db:"snapshot"`
	CompressionAlgo compressionAlgo `db:"compression_algo"`
	CreatedBy       string          `db:"created_by"`
	CreatedAt       time.Time       `db:"created_at"`
}

// SavedReportRepo implements analytics.SavedReportRepository.
type SavedReportRepo struct {
	tx      *postgres.TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewSavedReportRepo(tx *postgres.TxManager) (*SavedReportRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &SavedReportRepo{tx: tx, encoder: encoder, decoder: decoder}, nil
}

var _ analytics.SavedReportRepository = (*SavedReportRepo)(nil)

// compress applies zstd once the snapshot reaches the size threshold.
func (r *SavedReportRepo) compress(snapshot []byte) ([]byte, compressionAlgo) {
	if len(snapshot) >= compressThreshold {
		return r.encoder.EncodeAll(snapshot, nil), compressionZstd
	}
	return snapshot, compressionNone
}

func (r *SavedReportRepo) Create(ctx context.Context, rep *analytics.SavedReport) error {
	snapshot, algo := r.compress([]byte(rep.Snapshot))

	sql, args, err := builder().
		Insert(reportTable).
		Columns("id", "kind", "title", "params", "snapshot", "compression_algo",
			"created_by", "created_at").
		Values(rep.ID, rep.Kind, rep.Title, rep.Params, snapshot, algo,
			rep.CreatedBy, rep.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert report: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *SavedReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*analytics.SavedReport, error) {
	sql, args, err := builder().
		Select("id", "kind", "title", "params", "snapshot", "compression_algo",
			"created_by", "created_at").
		From(reportTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select report: %w", err)
	}

	var row storedReport
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &row, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("report", id)
		}
		return nil, fmt.Errorf("select report: %w", err)
	}
	return r.toDomain(&row)
}

func (r *SavedReportRepo) List(ctx context.Context, limit, offset int) ([]analytics.SavedReport, error) {
	sql, args, err := builder().
		Select("id", "kind", "title", "params", "snapshot", "compression_algo",
			"created_by", "created_at").
		From(reportTable).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reports: %w", err)
	}

	var rows []storedReport
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := make([]analytics.SavedReport, 0, len(rows))
	for i := range rows {
		rep, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}

func (r *SavedReportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := builder().
		Delete(reportTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete report: %w", err)
	}

	tag, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("report", id)
	}
	return nil
}

func (r *SavedReportRepo) toDomain(row *storedReport) (*analytics.SavedReport, error) {
	snapshot := row.Snapshot
	if row.CompressionAlgo == compressionZstd {
		decoded, err := r.decoder.DecodeAll(snapshot, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress report snapshot: %w", err)
		}
		snapshot = decoded
	}
	return &analytics.SavedReport{
		ID:        row.ID,
		Kind:      analytics.ReportKind(row.Kind),
		Title:     row.Title,
		Params:    row.Params,
		Snapshot:  snapshot,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}, nil
}
