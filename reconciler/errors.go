package reconciler

import "fmt"

// SigningError reports a token generation failure for one endpoint. It
// aborts the run before any mutation, since all tokens are joined ahead of
// the upsert phase.
type SigningError struct {
	ConfigName string
	Err        error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing token for %s: %s", e.ConfigName, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// ListError reports a failure enumerating existing Hyperdrive configs. It
// is fatal for the run: without a complete listing the create/edit decision
// cannot be made safely.
type ListError struct {
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing hyperdrive configs: %s", e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// UpsertError reports a create or edit failure for one endpoint. Other
// endpoints' upserts proceed regardless.
type UpsertError struct {
	ConfigName string
	Operation  string
	Err        error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("%s hyperdrive config %s: %s", e.Operation, e.ConfigName, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }
