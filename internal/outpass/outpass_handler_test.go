package outpass_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-outpass/internal/outpass"
	outpasserrors "go-outpass/internal/outpass/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeOutpassService struct {
	CreateFn         func(ctx context.Context, actorID string, req outpass.CreateOutpassRequest) (outpass.OutpassResponse, error)
	GetAllFn         func(ctx context.Context, status, hostel string) ([]outpass.OutpassResponse, error)
	GetByIDFn        func(ctx context.Context, id string) (outpass.OutpassResponse, error)
	AcceptFn         func(ctx context.Context, actorID, id string) (outpass.OutpassResponse, error)
	RejectFn         func(ctx context.Context, actorID, id, rejectionReason string) (outpass.OutpassResponse, error)
	RequestRenewalFn func(ctx context.Context, actorID, id string, req outpass.RenewOutpassRequest) (outpass.OutpassResponse, error)
	ApproveRenewalFn func(ctx context.Context, actorID, id string) (outpass.OutpassResponse, error)
	DeleteFn         func(ctx context.Context, id string) error
}

func (f *fakeOutpassService) Create(ctx context.Context, actorID string, req outpass.CreateOutpassRequest) (outpass.OutpassResponse, error) {
	return f.CreateFn(ctx, actorID, req)
}
func (f *fakeOutpassService) GetAll(ctx context.Context, status, hostel string) ([]outpass.OutpassResponse, error) {
	return f.GetAllFn(ctx, status, hostel)
}
func (f *fakeOutpassService) GetByID(ctx context.Context, id string) (outpass.OutpassResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeOutpassService) Accept(ctx context.Context, actorID, id string) (outpass.OutpassResponse, error) {
	return f.AcceptFn(ctx, actorID, id)
}
func (f *fakeOutpassService) Reject(ctx context.Context, actorID, id, rejectionReason string) (outpass.OutpassResponse, error) {
	return f.RejectFn(ctx, actorID, id, rejectionReason)
}
func (f *fakeOutpassService) RequestRenewal(ctx context.Context, actorID, id string, req outpass.RenewOutpassRequest) (outpass.OutpassResponse, error) {
	return f.RequestRenewalFn(ctx, actorID, id, req)
}
func (f *fakeOutpassService) ApproveRenewal(ctx context.Context, actorID, id string) (outpass.OutpassResponse, error) {
	return f.ApproveRenewalFn(ctx, actorID, id)
}
func (f *fakeOutpassService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

const createBody = `{
	"student_name": "Asha Nair",
	"hostel": "Ganga",
	"institution": "Engineering College",
	"course": "B.Tech CSE",
	"room_number": "A-214",
	"permission_type": "OUTPASS",
	"purpose": "Medical",
	"destination": "City hospital",
	"date_from": "2026-03-10",
	"date_to": "2026-03-10",
	"time_out": "16:00",
	"time_in": "18:00"
}`

func TestOutpassHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		actorID := uuid.New().String()
		svc := &fakeOutpassService{
			CreateFn: func(ctx context.Context, aid string, req outpass.CreateOutpassRequest) (outpass.OutpassResponse, error) {
				assert.Equal(t, actorID, aid)
				assert.Equal(t, "Asha Nair", req.StudentName)
				assert.Equal(t, outpass.PermissionOutpass, req.PermissionType)
				return outpass.OutpassResponse{ID: uuid.New().String(), Status: outpass.StatusPending}, nil
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses", strings.NewReader(createBody))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request.Header.Set("X-Actor-ID", actorID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation error on missing fields", func(t *testing.T) {
		h := outpass.NewHandler(&fakeOutpassService{})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation error on bad permission type", func(t *testing.T) {
		h := outpass.NewHandler(&fakeOutpassService{})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := strings.Replace(createBody, `"OUTPASS"`, `"DAYPASS"`, 1)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error maps through apperror", func(t *testing.T) {
		svc := &fakeOutpassService{
			CreateFn: func(ctx context.Context, aid string, req outpass.CreateOutpassRequest) (outpass.OutpassResponse, error) {
				return outpass.OutpassResponse{}, outpasserrors.ErrOutpassOverlap
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses", strings.NewReader(createBody))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOutpassHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeOutpassService{
		GetAllFn: func(ctx context.Context, status, hostel string) ([]outpass.OutpassResponse, error) {
			assert.Equal(t, outpass.StatusAccepted, status)
			assert.Equal(t, "Ganga", hostel)
			out := make([]outpass.OutpassResponse, 15)
			for i := range out {
				out[i] = outpass.OutpassResponse{ID: uuid.New().String()}
			}
			return out, nil
		},
	}
	h := outpass.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/outpasses?status=ACCEPTED&hostel=Ganga&page=2&page_size=10", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []outpass.OutpassResponse `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 5)
	assert.Equal(t, int64(15), envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.TotalPages)
}

func TestOutpassHandler_GetById(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		svc := &fakeOutpassService{
			GetByIDFn: func(ctx context.Context, got string) (outpass.OutpassResponse, error) {
				assert.Equal(t, id, got)
				return outpass.OutpassResponse{ID: id}, nil
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/outpasses/"+id, nil)
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.GetById(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeOutpassService{
			GetByIDFn: func(ctx context.Context, id string) (outpass.OutpassResponse, error) {
				return outpass.OutpassResponse{}, outpasserrors.ErrOutpassNotFound
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/outpasses/missing", nil)
		c.Params = gin.Params{{Key: "id", Value: "missing"}}

		h.GetById(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOutpassHandler_Reject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		svc := &fakeOutpassService{
			RejectFn: func(ctx context.Context, actorID, got, reason string) (outpass.OutpassResponse, error) {
				assert.Equal(t, id, got)
				assert.Equal(t, "No warden on duty", reason)
				return outpass.OutpassResponse{ID: id, Status: outpass.StatusRejected}, nil
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"rejection_reason":"No warden on duty"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses/"+id+"/reject", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing reason fails binding", func(t *testing.T) {
		h := outpass.NewHandler(&fakeOutpassService{})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses/x/reject", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Reject(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOutpassHandler_RenewalEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("request renewal", func(t *testing.T) {
		id := uuid.New().String()
		svc := &fakeOutpassService{
			RequestRenewalFn: func(ctx context.Context, actorID, got string, req outpass.RenewOutpassRequest) (outpass.OutpassResponse, error) {
				assert.Equal(t, "2026-03-11", req.DateTo)
				assert.Equal(t, "20:00", req.TimeIn)
				return outpass.OutpassResponse{ID: got, Status: outpass.StatusRenewalPending}, nil
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"date_to":"2026-03-11","time_in":"20:00","reason":"kept overnight"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses/"+id+"/renew", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: id}}

		h.RequestRenewal(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("approve renewal invalid transition", func(t *testing.T) {
		svc := &fakeOutpassService{
			ApproveRenewalFn: func(ctx context.Context, actorID, id string) (outpass.OutpassResponse, error) {
				return outpass.OutpassResponse{}, outpasserrors.ErrInvalidStatusTransition
			},
		}
		h := outpass.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/outpasses/x/approve-renewal", nil)
		c.Params = gin.Params{{Key: "id", Value: "x"}}

		h.ApproveRenewal(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOutpassHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	id := uuid.New().String()
	svc := &fakeOutpassService{
		DeleteFn: func(ctx context.Context, got string) error {
			assert.Equal(t, id, got)
			return nil
		},
	}
	h := outpass.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/outpasses/"+id, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
