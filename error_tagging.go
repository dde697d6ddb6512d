package taskpool

import (
	"errors"
	"fmt"
)

// JobMetaError exposes job-id/index correlation metadata for a task failure
// (spec.md §4.3, "error tagging: wrap the underlying error with the job-id
// and element index it occurred at"). Unlike a generic task-id tagging
// scheme, this package always tags with its own monotonic jobID counter
// (cache.go's nextJobID), never a caller-supplied identifier, so the
// metadata is a concrete uint64/int pair rather than an any-typed id.
type JobMetaError interface {
	error
	Unwrap() error
	JobID() (uint64, bool)
	ElementIndex() (int, bool)
}

type jobTaggedError struct {
	err   error
	id    jobID
	index int
}

func newJobTaggedError(err error, id jobID, index int) error {
	if err == nil {
		return nil
	}
	return &jobTaggedError{err: err, id: id, index: index}
}

func (e *jobTaggedError) Error() string { return e.err.Error() }
func (e *jobTaggedError) Unwrap() error { return e.err }

func (e *jobTaggedError) JobID() (uint64, bool) { return uint64(e.id), true }

func (e *jobTaggedError) ElementIndex() (int, bool) {
	if e.index < 0 {
		return 0, false
	}
	return e.index, true
}

func (e *jobTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "job %d, element %d: %+v", e.id, e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractJobID returns the job-id tagged onto err, if ErrorTagging produced one.
func ExtractJobID(err error) (uint64, bool) {
	var jme JobMetaError
	if errors.As(err, &jme) {
		return jme.JobID()
	}
	return 0, false
}

// ExtractElementIndex returns the task index tagged onto err, if any: the
// element position for an Imap/ImapUnordered task, the chunk index (not the
// position of the failing element) for a Map/Starmap chunk task, and 0 for a
// single Apply task.
func ExtractElementIndex(err error) (int, bool) {
	var jme JobMetaError
	if errors.As(err, &jme) {
		return jme.ElementIndex()
	}
	return 0, false
}
