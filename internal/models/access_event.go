package models

import "time"

// AccessEvent is one CCTV/access-control detection supplied by the external
// recognition backend.
type AccessEvent struct {
	ID                 string    `json:"id" db:"id"`
	DetectedPersonID   string    `json:"detected_person_id" db:"detected_person_id"`
	DetectedPersonName string    `json:"detected_person_name,omitempty" db:"detected_person_name"`
	Timestamp          time.Time `json:"timestamp" db:"event_time"`
	Confidence         float64   `json:"confidence" db:"confidence"` // 0..1
	Authorized         bool      `json:"authorized" db:"authorized"`
	Location           string    `json:"location,omitempty" db:"location"`
	Duration           float64   `json:"duration,omitempty" db:"duration"` // seconds in frame
	FrameNumber        int       `json:"frame_number,omitempty" db:"frame_number"`
}

// Matches reports whether the event was attributed to the given employee,
// by id or by display name.
func (e *AccessEvent) Matches(rec *BehavioralRecord) bool {
	return e.DetectedPersonID == rec.User ||
		(e.DetectedPersonName != "" && e.DetectedPersonName == rec.EmployeeName)
}

// AccessLog groups the access events from one footage source.
type AccessLog struct {
	VideoID             string        `json:"video_id"`
	UploadedAt          time.Time     `json:"uploaded_at"`
	TotalFrames         int           `json:"total_frames,omitempty"`
	Duration            float64       `json:"duration,omitempty"` // seconds
	Events              []AccessEvent `json:"access_events"`
	AuthorizedEmployees []string      `json:"authorized_employees,omitempty"`
}

// AccessRiskResult is the access-control risk estimate for one employee.
type AccessRiskResult struct {
	Score             float64     `json:"score"`
	UnauthorizedCount int         `json:"unauthorized_count"`
	Times             []time.Time `json:"times"`
	Factors           []string    `json:"factors"`
}
