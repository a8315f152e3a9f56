package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pomotrack/apiserver/types"
)

// RecordRepository defines persistence operations for completion records.
type RecordRepository interface {
	Create(ctx context.Context, record types.Record) (types.Record, error)
	CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
}

// CompletionPublisher announces appended records to other systems.
type CompletionPublisher interface {
	PublishCompletion(ctx context.Context, record types.Record) error
}

// RecordService appends completion records and builds the weekly report.
type RecordService struct {
	repo      RecordRepository
	publisher CompletionPublisher
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecordService constructs a RecordService. publisher may be nil; loc
// defaults to UTC.
func NewRecordService(repo RecordRepository, publisher CompletionPublisher, loc *time.Location, logger *slog.Logger) *RecordService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService{
		repo:      repo,
		publisher: publisher,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Append stores one completed interval for the user. A failed publish is
// logged and does not fail the call.
func (s *RecordService) Append(ctx context.Context, userID string) (types.Record, error) {
	record, err := s.repo.Create(ctx, types.Record{
		UserID:    userID,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return types.Record{}, fmt.Errorf("create record: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCompletion(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "publish completion failed",
				"operation", "record_publish",
				"outcome", "failure",
				"record_id", record.ID,
				"error", err.Error(),
			)
		}
	}
	return record, nil
}

// WeeklyReport returns the user's record counts for the last ReportDays
// calendar days, today included.
func (s *RecordService) WeeklyReport(ctx context.Context, userID string) ([]types.DailyCount, error) {
	now := s.now()
	stamps, err := s.repo.CreatedSince(ctx, userID, reportWindowStart(now, s.loc))
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return BuildWeeklyReport(now, s.loc, stamps), nil
}
