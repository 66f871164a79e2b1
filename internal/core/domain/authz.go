package domain

import "fmt"

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionCreate   Action = "create"
	ActionView     Action = "view"
	ActionAccept   Action = "accept"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionRate     Action = "rate"
)

// Authorize enforces the role- and ownership-based rules gating each action.
// The returned error wraps ErrPermissionDenied with a reason suitable for
// logging; callers should not echo it verbatim to end users.
func Authorize(user *User, req *ServiceRequest, action Action) error {
	if user == nil {
		return deny("unauthenticated")
	}

	switch action {
	case ActionCreate:
		if user.Role != RoleHomeowner {
			return deny("only homeowners can create service requests")
		}
		return nil

	case ActionAccept:
		// Any provider may claim an unassigned pending request; the state
		// machine, not the guard, rejects accepts on non-pending requests.
		if user.Role != RoleServiceProvider {
			return deny("only service providers can accept requests")
		}
		return nil

	case ActionView:
		if user.Role == RoleHomeowner && req != nil && req.Homeowner == user.Username {
			return nil
		}
		if user.Role == RoleServiceProvider && req != nil {
			if req.ServiceProvider == user.Username {
				return nil
			}
			if req.Status == StatusPending && !req.Assigned() {
				return nil
			}
		}
		return deny("request does not belong to user")

	case ActionStart, ActionComplete:
		if user.Role != RoleServiceProvider || req == nil || req.ServiceProvider != user.Username {
			return deny("only the assigned provider can " + string(action) + " a request")
		}
		return nil

	case ActionRate:
		if user.Role != RoleHomeowner || req == nil || req.Homeowner != user.Username {
			return deny("only the owning homeowner can rate a request")
		}
		return nil
	}

	return deny("unknown action " + string(action))
}

func deny(reason string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
}
