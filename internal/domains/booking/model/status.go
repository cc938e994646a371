package model

import "fmt"

// Status is the lifecycle state of a booking. WAITING is the only
// non-terminal status: a booking is decided exactly once, either way.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	}

	return false
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && s != StatusWaiting
}

func ParseStatus(token string) (Status, error) {
	status := Status(token)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown status: %s", token)
	}

	return status, nil
}

// State is the filter token for booking listings. CURRENT, PAST and FUTURE
// classify against the injected "now"; WAITING and REJECTED filter by status.
// The match is case-sensitive and an unknown token is an error, not a default.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

func ParseState(token string) (State, error) {
	state := State(token)
	switch state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	}

	return "", fmt.Errorf("unknown state: %s", token)
}
