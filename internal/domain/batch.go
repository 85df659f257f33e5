package domain

import "time"

type IntakeBatchStatus string

const (
	IntakeBatchStatusPending    IntakeBatchStatus = "pending"
	IntakeBatchStatusReceived   IntakeBatchStatus = "received"
	IntakeBatchStatusProcessing IntakeBatchStatus = "processing"
	IntakeBatchStatusCompleted  IntakeBatchStatus = "completed"
)

// CanAdvanceTo reports whether next is the immediate successor status.
func (s IntakeBatchStatus) CanAdvanceTo(next IntakeBatchStatus) bool {
	switch s {
	case IntakeBatchStatusPending:
		return next == IntakeBatchStatusReceived
	case IntakeBatchStatusReceived:
		return next == IntakeBatchStatusProcessing
	case IntakeBatchStatusProcessing:
		return next == IntakeBatchStatusCompleted
	default:
		return false
	}
}

// IntakeBatch groups cards a seller sent in for listing.
type IntakeBatch struct {
	ID        string
	SellerID  string
	Status    IntakeBatchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
