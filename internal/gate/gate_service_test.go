package gate_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-outpass/internal/gate"
	gateerrors "go-outpass/internal/gate/errors"
	"go-outpass/internal/messaging/kafka"
	"go-outpass/internal/outpass"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeOutpassRepository struct {
	findByIDFn       func(ctx context.Context, id string) (*outpass.Outpass, error)
	findByPassCodeFn func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error)
	updateFn         func(ctx context.Context, o *outpass.Outpass) error
}

func (f *fakeOutpassRepository) WithTx(tx *sql.Tx) outpass.Repository { return f }

func (f *fakeOutpassRepository) Create(ctx context.Context, o *outpass.Outpass) error { return nil }

func (f *fakeOutpassRepository) FindAll(ctx context.Context, status, hostel string) ([]outpass.Outpass, error) {
	return nil, nil
}

func (f *fakeOutpassRepository) FindByID(ctx context.Context, id string) (*outpass.Outpass, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOutpassRepository) FindByPassCode(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
	if f.findByPassCodeFn != nil {
		return f.findByPassCodeFn(ctx, passCode)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOutpassRepository) Update(ctx context.Context, o *outpass.Outpass) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, o)
	}
	return nil
}

func (f *fakeOutpassRepository) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeOutpassRepository) HasOverlappingRequest(ctx context.Context, studentName, hostel string, dateFrom, dateTo time.Time, excludeID *string) (bool, error) {
	return false, nil
}

type fakeEntryRepository struct {
	createFn func(ctx context.Context, e *gate.EntryLog) error
}

func (f *fakeEntryRepository) WithTx(tx *sql.Tx) gate.Repository { return f }

func (f *fakeEntryRepository) Create(ctx context.Context, e *gate.EntryLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEntryRepository) FindByOutpassID(ctx context.Context, outpassID string) (*gate.EntryLog, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type gateServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   gate.Service
	outpasses *fakeOutpassRepository
	entries   *fakeEntryRepository
	outbox    *fakeOutboxRepository
}

func setupGateServiceTest(t *testing.T) *gateServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	outpasses := &fakeOutpassRepository{}
	entries := &fakeEntryRepository{}
	outbox := &fakeOutboxRepository{}
	svc := gate.NewService(db, outpasses, entries, outbox)

	return &gateServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		outpasses: outpasses,
		entries:   entries,
		outbox:    outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func acceptedOutpass() *outpass.Outpass {
	passCode := uuid.New()
	expected := time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)
	return &outpass.Outpass{
		ID:               uuid.New(),
		StudentName:      "Asha Nair",
		Hostel:           "Ganga",
		Status:           outpass.StatusAccepted,
		PassCode:         &passCode,
		ExpectedReturnAt: &expected,
	}
}

func TestGateService_QRCodePNG(t *testing.T) {
	ctx := context.Background()

	t.Run("success renders a png", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		o := acceptedOutpass()
		deps.outpasses.findByIDFn = func(ctx context.Context, id string) (*outpass.Outpass, error) {
			assert.Equal(t, o.ID.String(), id)
			return o, nil
		}

		png, err := deps.service.QRCodePNG(ctx, o.ID.String())

		assert.NoError(t, err)
		assert.NotEmpty(t, png)
		// PNG magic bytes.
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	})

	t.Run("negative unknown outpass", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.QRCodePNG(ctx, uuid.New().String())

		assert.ErrorIs(t, err, gateerrors.ErrPassUnknown)
	})

	t.Run("negative pending outpass has no pass", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		o := acceptedOutpass()
		o.Status = outpass.StatusPending
		o.PassCode = nil
		deps.outpasses.findByIDFn = func(ctx context.Context, id string) (*outpass.Outpass, error) {
			return o, nil
		}

		_, err := deps.service.QRCodePNG(ctx, o.ID.String())

		assert.ErrorIs(t, err, gateerrors.ErrPassNotActive)
	})

	t.Run("negative completed outpass is no longer scannable", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		o := acceptedOutpass()
		o.Status = outpass.StatusCompleted
		deps.outpasses.findByIDFn = func(ctx context.Context, id string) (*outpass.Outpass, error) {
			return o, nil
		}

		_, err := deps.service.QRCodePNG(ctx, o.ID.String())

		assert.ErrorIs(t, err, gateerrors.ErrPassNotActive)
	})
}

func TestGateService_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("success records entry and completes outpass", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		o := acceptedOutpass()
		deps.outpasses.findByPassCodeFn = func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
			assert.Equal(t, *o.PassCode, passCode)
			return o, nil
		}
		var updated *outpass.Outpass
		deps.outpasses.updateFn = func(ctx context.Context, o *outpass.Outpass) error {
			updated = o
			return nil
		}
		var logged *gate.EntryLog
		deps.entries.createFn = func(ctx context.Context, e *gate.EntryLog) error {
			logged = e
			return nil
		}
		var queued kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			queued = event
			return nil
		}

		resp, err := deps.service.Scan(ctx, gate.ScanRequest{
			Code:     o.PassCode.String(),
			GateName: "North gate",
		})

		assert.NoError(t, err)
		assert.Equal(t, outpass.StatusCompleted, resp.Status)
		assert.Equal(t, "North gate", resp.GateName)
		assert.Equal(t, o.ID.String(), resp.OutpassID)

		assert.Equal(t, outpass.StatusCompleted, updated.Status)
		assert.NotNil(t, updated.EntryTime)

		assert.Equal(t, o.ID, logged.OutpassID)
		assert.Equal(t, *o.PassCode, logged.PassCode)
		assert.Equal(t, "North gate", logged.GateName)

		assert.Equal(t, "hostel.gate.entry.v1", queued.Topic)
		assert.Equal(t, "gate.entry.recorded", queued.EventType)
		assert.Equal(t, o.ID.String(), queued.AggregateID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed code", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Scan(ctx, gate.ScanRequest{Code: "not-a-uuid"})

		assert.ErrorIs(t, err, gateerrors.ErrInvalidPassCode)
	})

	t.Run("negative unknown pass code", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Scan(ctx, gate.ScanRequest{Code: uuid.New().String()})

		assert.ErrorIs(t, err, gateerrors.ErrPassUnknown)
	})

	t.Run("negative entry already recorded", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		o := acceptedOutpass()
		now := time.Now().UTC()
		o.EntryTime = &now
		deps.outpasses.findByPassCodeFn = func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
			return o, nil
		}

		_, err := deps.service.Scan(ctx, gate.ScanRequest{Code: o.PassCode.String()})

		assert.ErrorIs(t, err, gateerrors.ErrEntryAlreadyRecorded)
	})

	t.Run("negative rejected outpass is not scannable", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		o := acceptedOutpass()
		o.Status = outpass.StatusRejected
		deps.outpasses.findByPassCodeFn = func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
			return o, nil
		}

		_, err := deps.service.Scan(ctx, gate.ScanRequest{Code: o.PassCode.String()})

		assert.ErrorIs(t, err, gateerrors.ErrPassNotActive)
	})

	t.Run("negative concurrent scan hits the unique index", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		o := acceptedOutpass()
		deps.outpasses.findByPassCodeFn = func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
			return o, nil
		}
		deps.entries.createFn = func(ctx context.Context, e *gate.EntryLog) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_gate_entries_outpass"}
		}

		_, err := deps.service.Scan(ctx, gate.ScanRequest{Code: o.PassCode.String()})

		assert.ErrorIs(t, err, gateerrors.ErrEntryAlreadyRecorded)
	})

	t.Run("renewed outpass scans like an accepted one", func(t *testing.T) {
		deps := setupGateServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		o := acceptedOutpass()
		o.Status = outpass.StatusRenewed
		deps.outpasses.findByPassCodeFn = func(ctx context.Context, passCode uuid.UUID) (*outpass.Outpass, error) {
			return o, nil
		}

		resp, err := deps.service.Scan(ctx, gate.ScanRequest{Code: o.PassCode.String()})

		assert.NoError(t, err)
		assert.Equal(t, outpass.StatusCompleted, resp.Status)
		// Empty gate name falls back to the default.
		assert.NotEmpty(t, resp.GateName)
	})
}
