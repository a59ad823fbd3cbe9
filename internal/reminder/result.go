package reminder

import (
	"encoding/json"
	"errors"
	"fmt"

	"ms-reminders/internal/models"
)

// ErrorKind classifies per-item failures in a sweep summary.
type ErrorKind string

const (
	ErrorKindEvaluate ErrorKind = "evaluate"
	ErrorKindLookup   ErrorKind = "lookup"
	ErrorKindClaim    ErrorKind = "claim"
	ErrorKindInsert   ErrorKind = "insert"
	ErrorKindDispatch ErrorKind = "dispatch"
)

var (
	// ErrDuplicateNotification is returned by a Store when the dedup key already exists.
	ErrDuplicateNotification = errors.New("notification already recorded")
	ErrUnknownSweep          = errors.New("unknown sweep")
)

// ItemError is a non-fatal failure for one candidate record.
type ItemError struct {
	ID   string
	Kind ErrorKind
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e *ItemError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		ID    string    `json:"id"`
		Kind  ErrorKind `json:"kind"`
		Error string    `json:"error"`
	}{e.ID, e.Kind, msg})
}

// SweepResult summarises one sweep run.
type SweepResult struct {
	Sweep      models.SweepKind `json:"sweep"`
	Examined   int              `json:"examined"`
	Created    int              `json:"created"`
	Suppressed int              `json:"suppressed"`
	Errors     []*ItemError     `json:"errors"`
}
