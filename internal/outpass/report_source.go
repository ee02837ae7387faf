package outpass

import (
	"context"
	"time"

	"go-outpass/internal/report"

	"gorm.io/gorm"
)

// ReportSource adapts the outpasses table to the report engine, for
// deployments where this service owns the data instead of pulling it from a
// remote reports API. Enum normalization happens here, at the ingestion
// boundary.
type ReportSource struct {
	db *gorm.DB
}

func NewReportSource(db *gorm.DB) *ReportSource {
	return &ReportSource{db: db}
}

const localInstantLayout = "2006-01-02T15:04:05"

func (s *ReportSource) Fetch(ctx context.Context) ([]report.Record, error) {
	var rows []Outpass
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]report.Record, 0, len(rows))
	for _, o := range rows {
		records = append(records, toReportRecord(o))
	}
	return records, nil
}

func toReportRecord(o Outpass) report.Record {
	r := report.Record{
		ID:             o.ID.String(),
		PermissionType: report.ParsePermissionType(o.PermissionType),
		Status:         report.ParseStatus(o.Status),
		DateFrom:       o.DateFrom.Format("2006-01-02"),
		DateTo:         o.DateTo.Format("2006-01-02"),
		TimeOut:        o.TimeOut,
		TimeIn:         o.TimeIn,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
		Name:           o.StudentName,
		Hostel:         o.Hostel,
		Institution:    o.Institution,
		Course:         o.Course,
		Purpose:        o.Purpose,
		Destination:    o.Destination,
		DurationText:   o.DurationText,
	}
	if o.EntryTime != nil {
		r.EntryTime = o.EntryTime.In(time.Local).Format(localInstantLayout)
	}
	if o.ExpectedReturnAt != nil {
		r.ExpectedReturn = o.ExpectedReturnAt.In(time.Local).Format(localInstantLayout)
	}
	return r
}
