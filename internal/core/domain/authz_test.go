package domain

import (
	"errors"
	"testing"
)

func homeowner(name string) *User       { return &User{Username: name, Role: RoleHomeowner} }
func provider(name string) *User        { return &User{Username: name, Role: RoleServiceProvider} }
func ownedRequest() *ServiceRequest     { return &ServiceRequest{Homeowner: "alice", Status: StatusPending} }
func assignedRequest() *ServiceRequest {
	return &ServiceRequest{Homeowner: "alice", ServiceProvider: "bob", Status: StatusScheduled}
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	if err := Authorize(nil, nil, ActionCreate); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("nil user must be denied, got %v", err)
	}
}

func TestAuthorize_Create(t *testing.T) {
	if err := Authorize(homeowner("alice"), nil, ActionCreate); err != nil {
		t.Errorf("homeowner create: unexpected error %v", err)
	}
	if err := Authorize(provider("bob"), nil, ActionCreate); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("provider create must be denied, got %v", err)
	}
}

func TestAuthorize_Accept(t *testing.T) {
	if err := Authorize(provider("bob"), ownedRequest(), ActionAccept); err != nil {
		t.Errorf("provider accept: unexpected error %v", err)
	}
	if err := Authorize(homeowner("alice"), ownedRequest(), ActionAccept); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("homeowner accept must be denied, got %v", err)
	}
}

func TestAuthorize_View(t *testing.T) {
	req := assignedRequest()

	if err := Authorize(homeowner("alice"), req, ActionView); err != nil {
		t.Errorf("owning homeowner view: unexpected error %v", err)
	}
	if err := Authorize(homeowner("mallory"), req, ActionView); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("other homeowner view must be denied, got %v", err)
	}
	if err := Authorize(provider("bob"), req, ActionView); err != nil {
		t.Errorf("assigned provider view: unexpected error %v", err)
	}
	if err := Authorize(provider("carol"), req, ActionView); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unassigned provider view of claimed request must be denied, got %v", err)
	}

	// Any provider may see an unassigned pending request (the open queue).
	open := ownedRequest()
	if err := Authorize(provider("carol"), open, ActionView); err != nil {
		t.Errorf("provider view of open pending request: unexpected error %v", err)
	}
	// Homeowners never see the open queue of others.
	if err := Authorize(homeowner("mallory"), open, ActionView); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("other homeowner view of open request must be denied, got %v", err)
	}
}

func TestAuthorize_StartComplete_AssignedProviderOnly(t *testing.T) {
	req := assignedRequest()

	for _, action := range []Action{ActionStart, ActionComplete} {
		if err := Authorize(provider("bob"), req, action); err != nil {
			t.Errorf("%s by assigned provider: unexpected error %v", action, err)
		}
		if err := Authorize(provider("carol"), req, action); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("%s by other provider must be denied, got %v", action, err)
		}
		if err := Authorize(homeowner("alice"), req, action); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("%s by homeowner must be denied, got %v", action, err)
		}
	}
}

func TestAuthorize_Rate_OwningHomeownerOnly(t *testing.T) {
	req := assignedRequest()

	if err := Authorize(homeowner("alice"), req, ActionRate); err != nil {
		t.Errorf("owning homeowner rate: unexpected error %v", err)
	}
	if err := Authorize(homeowner("mallory"), req, ActionRate); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("other homeowner rate must be denied, got %v", err)
	}
	if err := Authorize(provider("bob"), req, ActionRate); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("provider rate must be denied, got %v", err)
	}
}
