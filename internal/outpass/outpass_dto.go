package outpass

type CreateOutpassRequest struct {
	StudentName    string `json:"student_name" binding:"required"`
	Hostel         string `json:"hostel" binding:"required"`
	Institution    string `json:"institution"`
	Course         string `json:"course"`
	RoomNumber     string `json:"room_number"`
	PermissionType string `json:"permission_type" binding:"required,oneof=OUTPASS LEAVE"`
	Purpose        string `json:"purpose" binding:"required"`
	Destination    string `json:"destination"`
	DateFrom       string `json:"date_from" binding:"required"`
	DateTo         string `json:"date_to" binding:"required"`
	TimeOut        string `json:"time_out" binding:"required"`
	TimeIn         string `json:"time_in" binding:"required"`
	Duration       string `json:"duration"`
}

type RenewOutpassRequest struct {
	DateTo string `json:"date_to" binding:"required"`
	TimeIn string `json:"time_in" binding:"required"`
	Reason string `json:"reason"`
}

type RejectOutpassRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type OutpassResponse struct {
	ID             string `json:"id"`
	StudentName    string `json:"student_name"`
	Hostel         string `json:"hostel"`
	Institution    string `json:"institution,omitempty"`
	Course         string `json:"course,omitempty"`
	RoomNumber     string `json:"room_number,omitempty"`
	PermissionType string `json:"permission_type"`
	Purpose        string `json:"purpose"`
	Destination    string `json:"destination,omitempty"`
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	TimeOut        string `json:"time_out"`
	TimeIn         string `json:"time_in"`
	Duration       string `json:"duration,omitempty"`
	Status         string `json:"status"`

	ExpectedReturnAt *string `json:"expected_return_at,omitempty"`
	EntryTime        *string `json:"entry_time,omitempty"`
	PassCode         *string `json:"pass_code,omitempty"`
	ApprovedBy       *string `json:"approved_by,omitempty"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`
	RenewalReason    *string `json:"renewal_reason,omitempty"`

	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
