package model

import (
	"errors"
	"fmt"
)

// ErrNoWorkflowProjects aborts a run when no content module carries asset workflow configuration.
var ErrNoWorkflowProjects = errors.New("unable to find a project that contains asset workflow configurations; if you have not made asset workflow customizations, this tool is unnecessary")

// CustomerDataError reports malformed or unexpected input documents.
type CustomerDataError struct {
	Path string
	Msg  string
	Err  error
}

// NewCustomerDataError wraps err with the offending path.
func NewCustomerDataError(path, msg string, err error) *CustomerDataError {
	return &CustomerDataError{Path: path, Msg: msg, Err: err}
}

func (e *CustomerDataError) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CustomerDataError) Unwrap() error { return e.Err }

// StructuralInvariantError reports a runtime graph whose nodes and transitions no longer form a linear chain.
type StructuralInvariantError struct {
	Path        string
	Nodes       int
	Transitions int
	Msg         string
}

func (e *StructuralInvariantError) Error() string {
	return fmt.Sprintf("runtime graph %s: %s (nodes=%d, transitions=%d)", e.Path, e.Msg, e.Nodes, e.Transitions)
}

// UnsupportedConfigurationError reports a step configuration that cannot become a rendition.
type UnsupportedConfigurationError struct {
	ProcessID string
	Subject   string
	Reason    string
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.ProcessID, e.Subject, e.Reason)
}

// Leaves returns the errors joined into err with errors.Join, flattened in order.
// Any other non-nil error is its own single leaf.
func Leaves(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Leaves(e)...)
	}
	return out
}

// FailureReason returns the reason of an UnsupportedConfigurationError found in err,
// otherwise err's message.
func FailureReason(err error) string {
	var u *UnsupportedConfigurationError
	if errors.As(err, &u) {
		return u.Reason
	}
	return err.Error()
}
