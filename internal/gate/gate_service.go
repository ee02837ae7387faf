package gate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-outpass/internal/events"
	gateerrors "go-outpass/internal/gate/errors"
	"go-outpass/internal/messaging/kafka"
	"go-outpass/internal/outpass"
	"go-outpass/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const qrImageSize = 256

const defaultGateName = "MAIN"

// passPayload is what the QR image encodes and what the scanner posts back.
type passPayload struct {
	OutpassID string `json:"outpass_id"`
	PassCode  string `json:"pass_code"`
}

//go:generate mockgen -source=gate_service.go -destination=mock/gate_service_mock.go -package=mock
type Service interface {
	QRCodePNG(ctx context.Context, outpassID string) ([]byte, error)
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)
}

type service struct {
	db        *sql.DB
	outpasses outpass.Repository
	entries   Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	outpasses outpass.Repository,
	entries Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("gate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("gate.service")
	}
	return &service{
		db:        db,
		outpasses: outpasses,
		entries:   entries,
		outbox:    outbox,
		logger:    l,
	}
}

// QRCodePNG renders the gate pass for an accepted (or renewed) outpass.
func (s *service) QRCodePNG(ctx context.Context, outpassID string) ([]byte, error) {
	o, err := s.outpasses.FindByID(ctx, outpassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateerrors.ErrPassUnknown
		}
		return nil, err
	}

	if o.PassCode == nil || (o.Status != outpass.StatusAccepted && o.Status != outpass.StatusRenewed) {
		return nil, gateerrors.ErrPassNotActive
	}

	payload, err := json.Marshal(passPayload{
		OutpassID: o.ID.String(),
		PassCode:  o.PassCode.String(),
	})
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(string(payload), qrcode.Medium, qrImageSize)
}

// Scan records the student's re-entry: sets the actual entry time, completes
// the outpass, appends the gate audit row and queues the gate-entry event,
// all in one transaction.
func (s *service) Scan(ctx context.Context, req ScanRequest) (ScanResponse, error) {
	passCode, err := uuid.Parse(req.Code)
	if err != nil {
		return ScanResponse{}, gateerrors.ErrInvalidPassCode
	}

	gateName := strings.TrimSpace(req.GateName)
	if gateName == "" {
		gateName = defaultGateName
	}

	s.logger.Debug("gate scan requested",
		zap.String("pass_code", passCode.String()),
		zap.String("gate_name", gateName),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("gate scan begin tx failed", zap.Error(err))
		return ScanResponse{}, err
	}
	defer tx.Rollback()

	qOutpasses := s.outpasses.WithTx(tx)
	qEntries := s.entries.WithTx(tx)

	o, err := qOutpasses.FindByPassCode(ctx, passCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScanResponse{}, gateerrors.ErrPassUnknown
		}
		return ScanResponse{}, err
	}

	if o.EntryTime != nil {
		return ScanResponse{}, gateerrors.ErrEntryAlreadyRecorded
	}
	if !outpass.IsAllowedStatusTransition(o.Status, outpass.StatusCompleted) {
		s.logger.Warn("gate scan on non-scannable outpass",
			zap.String("outpass_id", o.ID.String()),
			zap.String("status", o.Status),
		)
		return ScanResponse{}, gateerrors.ErrPassNotActive
	}

	now := time.Now().UTC()
	o.EntryTime = &now
	o.Status = outpass.StatusCompleted
	if err := qOutpasses.Update(ctx, o); err != nil {
		s.logger.Error("gate scan outpass update failed", zap.Error(err))
		return ScanResponse{}, err
	}

	entry := &EntryLog{
		ID:        uuid.New(),
		OutpassID: o.ID,
		PassCode:  passCode,
		GateName:  gateName,
		ScannedAt: now,
	}
	if err := qEntries.Create(ctx, entry); err != nil {
		if isDuplicateEntry(err) {
			return ScanResponse{}, gateerrors.ErrEntryAlreadyRecorded
		}
		s.logger.Error("gate scan entry log failed", zap.Error(err))
		return ScanResponse{}, err
	}

	event := events.GateEntryRecordedEvent{
		EventType: "gate.entry.recorded",
		OutpassID: o.ID.String(),
		PassCode:  passCode.String(),
		GateName:  gateName,
		ScannedAt: now,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return ScanResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "gate_entry",
		AggregateID:   o.ID.String(),
		EventType:     event.EventType,
		Topic:         events.GateEntryTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("gate scan outbox persist failed", zap.Error(err))
		return ScanResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("gate scan commit failed", zap.Error(err))
		return ScanResponse{}, err
	}

	s.logger.Info("gate entry recorded",
		zap.String("outpass_id", o.ID.String()),
		zap.String("gate_name", gateName),
	)

	return ScanResponse{
		OutpassID:   o.ID.String(),
		StudentName: o.StudentName,
		Hostel:      o.Hostel,
		Status:      o.Status,
		ScannedAt:   now.Format(time.RFC3339),
		GateName:    gateName,
	}, nil
}

func isDuplicateEntry(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_gate_entries_outpass"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_gate_entries_outpass")
}
