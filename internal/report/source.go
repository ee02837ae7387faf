package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RecordSource fetches the full record set from the upstream reports
// collaborator. Implementations return raw, un-deduplicated batches; the
// service normalizes them.
//
//go:generate mockgen -source=source.go -destination=mock/source_mock.go -package=mock
type RecordSource interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// wireRecord is the upstream JSON shape. The permission kind arrives as free
// text in either `permission` or `request_type`.
type wireRecord struct {
	ID             string `json:"id"`
	Permission     string `json:"permission"`
	RequestType    string `json:"request_type"`
	Status         string `json:"status"`
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	TimeOut        string `json:"time_out"`
	TimeIn         string `json:"time_in"`
	EntryTime      string `json:"entry_time"`
	ExpectedReturn string `json:"expected_return_datetime"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	Name           string `json:"name"`
	Hostel         string `json:"hostel"`
	Institution    string `json:"institution"`
	Course         string `json:"course"`
	Purpose        string `json:"purpose"`
	Destination    string `json:"destination"`
	Duration       string `json:"duration"`
}

func (w wireRecord) toRecord() Record {
	permissionRaw := w.Permission
	if permissionRaw == "" {
		permissionRaw = w.RequestType
	}

	return Record{
		ID:             w.ID,
		PermissionType: ParsePermissionType(permissionRaw),
		Status:         ParseStatus(w.Status),
		DateFrom:       w.DateFrom,
		DateTo:         w.DateTo,
		TimeOut:        w.TimeOut,
		TimeIn:         w.TimeIn,
		EntryTime:      w.EntryTime,
		ExpectedReturn: w.ExpectedReturn,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
		Name:           w.Name,
		Hostel:         w.Hostel,
		Institution:    w.Institution,
		Course:         w.Course,
		Purpose:        w.Purpose,
		Destination:    w.Destination,
		DurationText:   w.Duration,
	}
}

// HTTPSource pulls records from the reports API over a plain GET.
type HTTPSource struct {
	client *http.Client
	url    string
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("reports api returned status %d", resp.StatusCode)
	}

	var wire []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode reports payload: %w", err)
	}

	records := make([]Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, w.toRecord())
	}
	return records, nil
}
