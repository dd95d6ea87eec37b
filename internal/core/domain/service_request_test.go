package domain

import "testing"

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestPending, RequestAccepted, true},
		{RequestPending, RequestRejected, true},
		{RequestPending, RequestCancelled, true},
		{RequestPending, RequestCompleted, false},
		{RequestAccepted, RequestInProgress, true},
		{RequestAccepted, RequestRejected, false},
		{RequestInProgress, RequestCompleted, true},
		{RequestInProgress, RequestCancelled, false},
		{RequestCompleted, RequestPending, false},
		{RequestRejected, RequestAccepted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
