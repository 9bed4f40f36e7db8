package model

import "time"

type RevealRequestStatus int

const (
	RevealRequestPending RevealRequestStatus = iota
	RevealRequestAccepted
	RevealRequestDeclined
)

// RevealRequest asks the target to expose their real identity to the
// requester. At most one pending request exists per ordered
// (requester, target) pair.
type RevealRequest struct {
	ID         string              `json:"id"`
	Requester  UserID              `json:"requester"`
	Target     UserID              `json:"target"`
	RelationID RelationID          `json:"relationId,omitempty"`
	Status     RevealRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	ResolvedAt *time.Time          `json:"resolvedAt,omitempty"`
}
