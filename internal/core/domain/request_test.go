package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{StatusPending, StatusScheduled, true},
		{StatusScheduled, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},

		// skipping steps
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusScheduled, StatusCompleted, false},

		// going backwards
		{StatusScheduled, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},

		// terminal state
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCompleted, StatusCompleted, false},

		// self loops
		{StatusPending, StatusPending, false},
		{StatusInProgress, StatusInProgress, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestRequestStatus_IsValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusScheduled, StatusInProgress, StatusCompleted} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []RequestStatus{"", "cancelled", "PENDING", "done"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestValidRating(t *testing.T) {
	for v := 1; v <= 5; v++ {
		if !ValidRating(v) {
			t.Errorf("rating %d should be valid", v)
		}
	}
	for _, v := range []int{0, -1, 6, 100} {
		if ValidRating(v) {
			t.Errorf("rating %d should be invalid", v)
		}
	}
}

func TestAssigned(t *testing.T) {
	r := &ServiceRequest{}
	if r.Assigned() {
		t.Error("empty provider must not count as assigned")
	}
	r.ServiceProvider = "jane_provider"
	if !r.Assigned() {
		t.Error("non-empty provider must count as assigned")
	}
}
