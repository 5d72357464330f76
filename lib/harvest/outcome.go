package harvest

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation against the target application.
type Kind int

const (
	KindUnknown Kind = iota
	// the target was unreachable or never finished loading
	KindNavigationFailure
	// the anchor control that reveals the selection surface is absent
	KindAnchorNotFound
	// a bounded visibility/hidden wait expired
	KindAffordanceTimeout
	// a selection index is invalid against a freshly observed count
	KindIndexOutOfRange
	// a candidate's harvest produced zero fields
	KindExtractionEmpty
)

func (k Kind) String() string {
	switch k {
	case KindNavigationFailure:
		return "NavigationFailure"
	case KindAnchorNotFound:
		return "AnchorNotFound"
	case KindAffordanceTimeout:
		return "AffordanceTimeout"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	case KindExtractionEmpty:
		return "ExtractionEmpty"
	}
	return "Unknown"
}

// Action is what the run does about a failure of a given kind.
type Action int

const (
	// keep going with the current candidate, the failure is cosmetic
	ActionProceed Action = iota
	// abandon the current candidate, continue with the next position
	ActionSkipCandidate
	// the run cannot continue
	ActionAbortRun
)

// DefaultPolicy maps every failure kind to the action taken on it.
// There is exactly one policy per run; candidates never get bespoke
// handling.
func DefaultPolicy() map[Kind]Action {
	return map[Kind]Action{
		KindUnknown:           ActionSkipCandidate,
		KindNavigationFailure: ActionAbortRun,
		KindAnchorNotFound:    ActionAbortRun,
		KindAffordanceTimeout: ActionProceed,
		KindIndexOutOfRange:   ActionAbortRun,
		KindExtractionEmpty:   ActionProceed,
	}
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindUnknown
}
