package session

// Status is the authentication state of the store.
type Status int

const (
	// StatusChecking means the store has not finished validating or logging in.
	StatusChecking Status = iota
	// StatusAuthenticated means a valid, unexpired session is held.
	StatusAuthenticated
	// StatusNotAuthenticated means no usable session is held.
	StatusNotAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusNotAuthenticated:
		return "not-authenticated"
	default:
		return "unknown"
	}
}
