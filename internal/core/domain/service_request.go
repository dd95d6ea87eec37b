package domain

import "time"

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAccepted   RequestStatus = "accepted"
	RequestRejected   RequestStatus = "rejected"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestAccepted, RequestRejected, RequestCancelled},
	RequestAccepted:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Feedback is the consumer's rating of a completed request.
type Feedback struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

// StatusChange records one persisted service request transition.
type StatusChange struct {
	RequestID string
	From      RequestStatus
	To        RequestStatus
	ActorID   string
	At        time.Time
}
