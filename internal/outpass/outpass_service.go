package outpass

import (
	"context"
	"database/sql"
	"errors"
	"time"

	outpasserrors "go-outpass/internal/outpass/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending        = "PENDING"
	StatusAccepted       = "ACCEPTED"
	StatusRejected       = "REJECTED"
	StatusRenewalPending = "RENEWAL_PENDING"
	StatusRenewed        = "RENEWED"
	StatusCompleted      = "COMPLETED"
)

const (
	PermissionOutpass = "OUTPASS"
	PermissionLeave   = "LEAVE"
)

// IsAllowedStatusTransition is the request lifecycle: acceptance issues the
// gate pass, a renewal extends an accepted request, and a gate scan completes
// it.
func IsAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusPending:
		return targetStatus == StatusAccepted || targetStatus == StatusRejected
	case StatusAccepted:
		return targetStatus == StatusRenewalPending || targetStatus == StatusCompleted
	case StatusRenewalPending:
		return targetStatus == StatusRenewed || targetStatus == StatusRejected
	case StatusRenewed:
		return targetStatus == StatusCompleted
	default:
		return false
	}
}

//go:generate mockgen -source=outpass_service.go -destination=mock/outpass_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateOutpassRequest) (OutpassResponse, error)
	GetAll(ctx context.Context, status, hostel string) ([]OutpassResponse, error)
	GetByID(ctx context.Context, id string) (OutpassResponse, error)
	Accept(ctx context.Context, actorID, id string) (OutpassResponse, error)
	Reject(ctx context.Context, actorID, id, rejectionReason string) (OutpassResponse, error)
	RequestRenewal(ctx context.Context, actorID, id string, req RenewOutpassRequest) (OutpassResponse, error)
	ApproveRenewal(ctx context.Context, actorID, id string) (OutpassResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("outpass.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("outpass.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateOutpassRequest) (OutpassResponse, error) {
	s.logger.Debug("create outpass requested",
		zap.String("actor_id", actorID),
		zap.String("student_name", req.StudentName),
		zap.String("permission_type", req.PermissionType),
		zap.String("date_from", req.DateFrom),
		zap.String("date_to", req.DateTo),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create outpass begin tx failed", zap.Error(err))
		return OutpassResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	createdBy, err := parseActorID(actorID)
	if err != nil {
		return OutpassResponse{}, err
	}

	dateFrom, err := parseDate(req.DateFrom)
	if err != nil {
		return OutpassResponse{}, err
	}
	dateTo, err := parseDate(req.DateTo)
	if err != nil {
		return OutpassResponse{}, err
	}
	if dateFrom.After(dateTo) {
		return OutpassResponse{}, outpasserrors.ErrInvalidDateRange
	}
	if _, err := combineDateClock(dateTo, req.TimeIn); err != nil {
		return OutpassResponse{}, err
	}
	if _, err := combineDateClock(dateFrom, req.TimeOut); err != nil {
		return OutpassResponse{}, err
	}

	overlap, err := qtx.HasOverlappingRequest(ctx, req.StudentName, req.Hostel, dateFrom, dateTo, nil)
	if err != nil {
		s.logger.Error("create outpass overlap check failed", zap.Error(err))
		return OutpassResponse{}, err
	}
	if overlap {
		s.logger.Warn("create outpass overlap detected",
			zap.String("student_name", req.StudentName),
			zap.String("hostel", req.Hostel),
		)
		return OutpassResponse{}, outpasserrors.ErrOutpassOverlap
	}

	o := &Outpass{
		ID:             uuid.New(),
		StudentName:    req.StudentName,
		Hostel:         req.Hostel,
		Institution:    req.Institution,
		Course:         req.Course,
		RoomNumber:     req.RoomNumber,
		PermissionType: req.PermissionType,
		Purpose:        req.Purpose,
		Destination:    req.Destination,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		TimeOut:        req.TimeOut,
		TimeIn:         req.TimeIn,
		DurationText:   req.Duration,
		Status:         StatusPending,
		CreatedBy:      createdBy,
	}

	if err := qtx.Create(ctx, o); err != nil {
		s.logger.Error("create outpass persist failed", zap.Error(err))
		return OutpassResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create outpass commit failed", zap.Error(err))
		return OutpassResponse{}, err
	}
	s.logger.Info("create outpass success",
		zap.String("outpass_id", o.ID.String()),
		zap.String("student_name", req.StudentName),
	)

	return mapToResponse(*o), nil
}

func (s *service) GetAll(ctx context.Context, status, hostel string) ([]OutpassResponse, error) {
	outpasses, err := s.repo.FindAll(ctx, status, hostel)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(outpasses), nil
}

func (s *service) GetByID(ctx context.Context, id string) (OutpassResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutpassResponse{}, outpasserrors.ErrOutpassNotFound
		}
		return OutpassResponse{}, err
	}
	return mapToResponse(*o), nil
}

// Accept transitions a pending request to ACCEPTED, issues the gate pass code
// and pins the expected-return instant from date_to + time_in.
func (s *service) Accept(ctx context.Context, actorID, id string) (OutpassResponse, error) {
	return s.transition(ctx, actorID, id, StatusAccepted, nil, nil)
}

func (s *service) Reject(ctx context.Context, actorID, id, rejectionReason string) (OutpassResponse, error) {
	return s.transition(ctx, actorID, id, StatusRejected, &rejectionReason, nil)
}

// RequestRenewal moves an accepted request to RENEWAL_PENDING with the
// extended return date/time applied.
func (s *service) RequestRenewal(ctx context.Context, actorID, id string, req RenewOutpassRequest) (OutpassResponse, error) {
	newDateTo, err := parseDate(req.DateTo)
	if err != nil {
		return OutpassResponse{}, err
	}
	if _, err := combineDateClock(newDateTo, req.TimeIn); err != nil {
		return OutpassResponse{}, err
	}

	renewal := &renewalChange{dateTo: newDateTo, timeIn: req.TimeIn, reason: req.Reason}
	return s.transition(ctx, actorID, id, StatusRenewalPending, nil, renewal)
}

func (s *service) ApproveRenewal(ctx context.Context, actorID, id string) (OutpassResponse, error) {
	return s.transition(ctx, actorID, id, StatusRenewed, nil, nil)
}

type renewalChange struct {
	dateTo time.Time
	timeIn string
	reason string
}

func (s *service) transition(
	ctx context.Context,
	actorID, id, targetStatus string,
	rejectionReason *string,
	renewal *renewalChange,
) (OutpassResponse, error) {
	s.logger.Debug("transition outpass status requested",
		zap.String("outpass_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", targetStatus),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition outpass begin tx failed", zap.Error(err))
		return OutpassResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actorUUID, err := parseActorID(actorID)
	if err != nil {
		return OutpassResponse{}, err
	}

	o, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutpassResponse{}, outpasserrors.ErrOutpassNotFound
		}
		return OutpassResponse{}, err
	}
	if !IsAllowedStatusTransition(o.Status, targetStatus) {
		s.logger.Warn("transition outpass status invalid",
			zap.String("outpass_id", id),
			zap.String("from_status", o.Status),
			zap.String("to_status", targetStatus),
		)
		return OutpassResponse{}, outpasserrors.ErrInvalidStatusTransition
	}

	switch targetStatus {
	case StatusAccepted:
		passCode := uuid.New()
		expectedReturn, err := combineDateClock(o.DateTo, o.TimeIn)
		if err != nil {
			return OutpassResponse{}, err
		}
		now := time.Now().UTC()
		o.PassCode = &passCode
		o.ExpectedReturnAt = &expectedReturn
		o.ApprovedBy = &actorUUID
		o.ApprovedAt = &now
		o.RejectionReason = nil

	case StatusRejected:
		if rejectionReason == nil || *rejectionReason == "" {
			return OutpassResponse{}, outpasserrors.ErrRejectionReasonRequired
		}
		o.RejectionReason = rejectionReason
		o.ApprovedBy = nil
		o.ApprovedAt = nil
		o.PassCode = nil
		o.ExpectedReturnAt = nil

	case StatusRenewalPending:
		o.DateTo = renewal.dateTo
		o.TimeIn = renewal.timeIn
		if renewal.reason != "" {
			o.RenewalReason = &renewal.reason
		}

	case StatusRenewed:
		expectedReturn, err := combineDateClock(o.DateTo, o.TimeIn)
		if err != nil {
			return OutpassResponse{}, err
		}
		now := time.Now().UTC()
		o.ExpectedReturnAt = &expectedReturn
		o.ApprovedBy = &actorUUID
		o.ApprovedAt = &now
	}

	o.Status = targetStatus

	if err := qtx.Update(ctx, o); err != nil {
		s.logger.Error("transition outpass persist failed",
			zap.String("outpass_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return OutpassResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("transition outpass commit failed",
			zap.String("outpass_id", id),
			zap.Error(err),
		)
		return OutpassResponse{}, err
	}
	s.logger.Info("transition outpass status success",
		zap.String("outpass_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*o), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func parseActorID(actorID string) (uuid.UUID, error) {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, outpasserrors.ErrInvalidActorID
	}
	return id, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, outpasserrors.ErrInvalidDateFormat
	}
	return t, nil
}

// combineDateClock pins a HH:MM[:SS] clock value onto a date, in institution
// local time.
func combineDateClock(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04:05", clock)
	if err != nil {
		c, err = time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, outpasserrors.ErrInvalidTimeFormat
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.Local), nil
}

func mapToResponse(o Outpass) OutpassResponse {
	resp := OutpassResponse{
		ID:             o.ID.String(),
		StudentName:    o.StudentName,
		Hostel:         o.Hostel,
		Institution:    o.Institution,
		Course:         o.Course,
		RoomNumber:     o.RoomNumber,
		PermissionType: o.PermissionType,
		Purpose:        o.Purpose,
		Destination:    o.Destination,
		DateFrom:       o.DateFrom.Format("2006-01-02"),
		DateTo:         o.DateTo.Format("2006-01-02"),
		TimeOut:        o.TimeOut,
		TimeIn:         o.TimeIn,
		Duration:       o.DurationText,
		Status:         o.Status,
		CreatedBy:      o.CreatedBy.String(),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
	if o.ExpectedReturnAt != nil {
		v := o.ExpectedReturnAt.Format(time.RFC3339)
		resp.ExpectedReturnAt = &v
	}
	if o.EntryTime != nil {
		v := o.EntryTime.Format(time.RFC3339)
		resp.EntryTime = &v
	}
	if o.PassCode != nil {
		v := o.PassCode.String()
		resp.PassCode = &v
	}
	if o.ApprovedBy != nil {
		v := o.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if o.ApprovedAt != nil {
		v := o.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = o.RejectionReason
	resp.RenewalReason = o.RenewalReason
	return resp
}

func mapToListResponse(outpasses []Outpass) []OutpassResponse {
	resp := make([]OutpassResponse, len(outpasses))
	for i, o := range outpasses {
		resp[i] = mapToResponse(o)
	}
	return resp
}
