package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/core/appcontext"
	"opsboard/internal/core/apperror"
	"opsboard/pkg/logger"
)

// ReportKind names a snapshot-able aggregate.
type ReportKind string

const (
	ReportKPI         ReportKind = "kpi"
	ReportTopProducts ReportKind = "top_products"
	ReportTurnover    ReportKind = "turnover"
)

func ParseReportKind(s string) (ReportKind, error) {
	switch ReportKind(s) {
	case ReportKPI, ReportTopProducts, ReportTurnover:
		return ReportKind(s), nil
	}
	return "", apperror.NewValidation("invalid report kind").WithDetail("kind", s)
}

// SavedReport is a point-in-time snapshot of an aggregate. Once saved
// it never changes, even as the underlying sales do.
type SavedReport struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Kind      ReportKind      `db:"kind" json:"kind"`
	Title     string          `db:"title" json:"title"`
	Params    json.RawMessage `db:"params" json:"params"`
	Snapshot  json.RawMessage `db:"snapshot" json:"snapshot"`
	CreatedBy string          `db:"created_by" json:"createdBy"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// SavedReportRepository persists report snapshots.
type SavedReportRepository interface {
	Create(ctx context.Context, r *SavedReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*SavedReport, error)
	List(ctx context.Context, limit, offset int) ([]SavedReport, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaveReportInput describes the aggregate to snapshot.
type SaveReportInput struct {
	Kind   ReportKind
	Title  string
	Filter Filter
	Metric RankMetric
	Limit  int
}

// SaveReport computes the requested aggregate right now and stores the
// result as an immutable snapshot.
func (s *Service) SaveReport(ctx context.Context, in SaveReportInput) (*SavedReport, error) {
	if in.Title == "" {
		return nil, apperror.NewValidation("report title is required")
	}

	var (
		snapshot any
		err      error
	)
	switch in.Kind {
	case ReportKPI:
		snapshot, err = s.KPIs(ctx, in.Filter)
	case ReportTopProducts:
		snapshot, err = s.TopProducts(ctx, in.Filter, in.Metric, in.Limit)
	case ReportTurnover:
		snapshot, err = s.Turnover(ctx)
	default:
		return nil, apperror.NewValidation("invalid report kind").WithDetail("kind", string(in.Kind))
	}
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	params, err := json.Marshal(in.Filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	report := &SavedReport{
		ID:        uuid.New(),
		Kind:      in.Kind,
		Title:     in.Title,
		Params:    params,
		Snapshot:  body,
		CreatedAt: time.Now().UTC(),
	}
	if u := appcontext.GetUser(ctx); u != nil {
		report.CreatedBy = u.Email
	}
	if err := s.saved.Create(ctx, report); err != nil {
		return nil, err
	}
	logger.Info(ctx, "report snapshot saved", "id", report.ID, "kind", report.Kind)
	return report, nil
}

// GetReport fetches a stored snapshot by id.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*SavedReport, error) {
	return s.saved.GetByID(ctx, id)
}

// ListReports pages through stored snapshots, newest first.
func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]SavedReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.saved.List(ctx, limit, offset)
}

// DeleteReport removes a stored snapshot.
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return s.saved.Delete(ctx, id)
}
