package gate

type ScanRequest struct {
	Code     string `json:"code" binding:"required,uuid"`
	GateName string `json:"gate_name"`
}

type ScanResponse struct {
	OutpassID   string `json:"outpass_id"`
	StudentName string `json:"student_name"`
	Hostel      string `json:"hostel"`
	Status      string `json:"status"`
	ScannedAt   string `json:"scanned_at"`
	GateName    string `json:"gate_name"`
}
