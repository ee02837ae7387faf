package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-outpass/internal/report"
	reporterrors "go-outpass/internal/report/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeReportService struct {
	QueryFn   func(ctx context.Context, criteria report.Criteria) (report.FilterResult, error)
	StatsFn   func(ctx context.Context, criteria report.Criteria) (report.Stats, error)
	RefreshFn func(ctx context.Context) error
	MetaFn    func() report.SnapshotMeta
	ExportFn  func(ctx context.Context, criteria report.Criteria) (report.ExportReceipt, error)
}

func (f *fakeReportService) Query(ctx context.Context, criteria report.Criteria) (report.FilterResult, error) {
	return f.QueryFn(ctx, criteria)
}
func (f *fakeReportService) Stats(ctx context.Context, criteria report.Criteria) (report.Stats, error) {
	return f.StatsFn(ctx, criteria)
}
func (f *fakeReportService) Refresh(ctx context.Context) error {
	return f.RefreshFn(ctx)
}
func (f *fakeReportService) Meta() report.SnapshotMeta {
	if f.MetaFn != nil {
		return f.MetaFn()
	}
	return report.SnapshotMeta{}
}
func (f *fakeReportService) Export(ctx context.Context, criteria report.Criteria) (report.ExportReceipt, error) {
	return f.ExportFn(ctx, criteria)
}

func TestReportHandler_GetReports(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("maps query params to criteria", func(t *testing.T) {
		var got report.Criteria
		svc := &fakeReportService{
			QueryFn: func(ctx context.Context, criteria report.Criteria) (report.FilterResult, error) {
				got = criteria
				return report.FilterResult{Filtered: fixtureSet()}, nil
			},
		}
		h := report.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet,
			"/reports?search=asha&date_from=2026-03-01&date_to=2026-03-31&status=Completed&permission_type=leave&hostel=Ganga&violation=Violations", nil)

		h.GetReports(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, report.Criteria{
			Search:            "asha",
			DateFrom:          "2026-03-01",
			DateTo:            "2026-03-31",
			Status:            "Completed",
			PermissionType:    "leave",
			Hostel:            "Ganga",
			ViolationCategory: "Violations",
		}, got)

		var envelope struct {
			Ok   bool `json:"ok"`
			Data struct {
				Records []report.ClassifiedRecord `json:"records"`
				Stats   report.Stats              `json:"stats"`
			} `json:"data"`
			Meta struct {
				Total int64 `json:"total"`
				Page  int   `json:"page"`
			} `json:"meta"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Ok)
		assert.Len(t, envelope.Data.Records, 4)
		assert.Equal(t, int64(4), envelope.Meta.Total)
	})

	t.Run("paginates the filtered set", func(t *testing.T) {
		svc := &fakeReportService{
			QueryFn: func(ctx context.Context, criteria report.Criteria) (report.FilterResult, error) {
				return report.FilterResult{Filtered: fixtureSet()}, nil
			},
		}
		h := report.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/reports?page=2&page_size=3", nil)

		h.GetReports(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Data struct {
				Records []report.ClassifiedRecord `json:"records"`
			} `json:"data"`
			Meta struct {
				Total      int64 `json:"total"`
				TotalPages int   `json:"totalPages"`
				Page       int   `json:"page"`
			} `json:"meta"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data.Records, 1)
		assert.Equal(t, "r-4", envelope.Data.Records[0].ID)
		assert.Equal(t, 2, envelope.Meta.Page)
		assert.Equal(t, 2, envelope.Meta.TotalPages)
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		svc := &fakeReportService{
			QueryFn: func(ctx context.Context, criteria report.Criteria) (report.FilterResult, error) {
				return report.FilterResult{}, reporterrors.ErrUpstreamUnavailable
			},
		}
		h := report.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/reports", nil)

		h.GetReports(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var envelope struct {
			Ok    bool `json:"ok"`
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.False(t, envelope.Ok)
		assert.Equal(t, "SERVICE_UNAVAILABLE", envelope.Error.Code)
	})
}

func TestReportHandler_GetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeReportService{
		StatsFn: func(ctx context.Context, criteria report.Criteria) (report.Stats, error) {
			return report.Stats{Total: 7}, nil
		},
	}
	h := report.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/stats", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data report.Stats `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 7, envelope.Data.Total)
}

func TestReportHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success returns snapshot meta", func(t *testing.T) {
		fetchedAt := time.Now()
		svc := &fakeReportService{
			RefreshFn: func(ctx context.Context) error { return nil },
			MetaFn: func() report.SnapshotMeta {
				return report.SnapshotMeta{RecordCount: 42, FetchedAt: fetchedAt}
			},
		}
		h := report.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/reports/refresh", nil)

		h.Refresh(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Data report.SnapshotMeta `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, 42, envelope.Data.RecordCount)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := &fakeReportService{
			RefreshFn: func(ctx context.Context) error { return reporterrors.ErrUpstreamUnavailable },
		}
		h := report.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/reports/refresh", nil)

		h.Refresh(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestReportHandler_Export(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeReportService{
		ExportFn: func(ctx context.Context, criteria report.Criteria) (report.ExportReceipt, error) {
			assert.Equal(t, "Violations", criteria.ViolationCategory)
			return report.ExportReceipt{ExportID: "exp-1", RecordCount: 3}, nil
		},
	}
	h := report.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports/export?violation=Violations", nil)

	h.Export(c)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var envelope struct {
		Data report.ExportReceipt `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "exp-1", envelope.Data.ExportID)
	assert.Equal(t, 3, envelope.Data.RecordCount)
}
