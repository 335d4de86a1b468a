package entities

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

type BookRequest struct {
	ID        int           `json:"id"`
	Username  string        `json:"username"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	Reason    string        `json:"reason"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Placeholder metadata given to books created from an approved request.
const (
	RequestedBookGenre  = "User Requested"
	RequestedBookPeriod = "Unknown"
)
