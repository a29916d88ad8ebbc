package models

import "time"

// ProfileRequestStatus określa status wniosku o zmianę profilu
type ProfileRequestStatus string

const (
	ProfileRequestPending  ProfileRequestStatus = "pending"
	ProfileRequestApproved ProfileRequestStatus = "approved"
	ProfileRequestRejected ProfileRequestStatus = "rejected"
)

// ProfileRequest reprezentuje wniosek studenta o zmianę danych profilu,
// rozpatrywany przez administratora
type ProfileRequest struct {
	ID               string               `json:"id" firestore:"id"`
	UserID           string               `json:"user_id" firestore:"user_id"`
	RequestedChanges map[string]string    `json:"requested_changes" firestore:"requested_changes"`
	Status           ProfileRequestStatus `json:"status" firestore:"status"`
	ReviewedBy       string               `json:"reviewed_by,omitempty" firestore:"reviewed_by"`
	CreatedAt        time.Time            `json:"created_at" firestore:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at" firestore:"updated_at"`
}

// IsPending sprawdza czy wniosek czeka na rozpatrzenie
func (r *ProfileRequest) IsPending() bool {
	return r.Status == ProfileRequestPending
}
