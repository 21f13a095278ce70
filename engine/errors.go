package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cpcf/weftgen/lang"
)

var (
	// ErrMissingClassName means the data model has no usable class name.
	ErrMissingClassName = errors.New("data model has no class name")
	// ErrInvalidClassName means the class name cannot be used as a file name.
	ErrInvalidClassName = errors.New("invalid class name")
	// ErrInvalidPackage means a package segment would escape the output root.
	ErrInvalidPackage = errors.New("invalid package name")
)

// ResolutionReason classifies a template lookup failure.
type ResolutionReason int

const (
	ReasonUnknownLanguage ResolutionReason = iota + 1
	ReasonNotFound
	ReasonUnreadable
	ReasonMalformed
)

func (r ResolutionReason) String() string {
	switch r {
	case ReasonUnknownLanguage:
		return "unknown language"
	case ReasonNotFound:
		return "template not found"
	case ReasonUnreadable:
		return "template unreadable"
	case ReasonMalformed:
		return "malformed template"
	default:
		return "unresolved template"
	}
}

// TemplateResolutionError reports that no usable template exists for a
// (language, name) pair. It always indicates a configuration defect.
type TemplateResolutionError struct {
	Language lang.Language
	Name     string
	Path     string
	Reason   ResolutionReason
	Err      error
}

func (e *TemplateResolutionError) Error() string {
	msg := fmt.Sprintf("%s: %s template %q", e.Reason, e.Language, e.Name)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TemplateResolutionError) Unwrap() error {
	return e.Err
}

// FileCreationError is the single error returned by Emitter.GenerateFile.
// Path is the file that was being produced; Err is the underlying cause.
type FileCreationError struct {
	Path string
	Err  error
}

func (e *FileCreationError) Error() string {
	return fmt.Sprintf("unable to create file %s: %v", e.Path, e.Err)
}

func (e *FileCreationError) Unwrap() error {
	return e.Err
}

// PrepareError reports a failure to reset the output root. A run must not
// continue after it.
type PrepareError struct {
	Root string
	Err  error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("unable to prepare output directory %s: %v", e.Root, e.Err)
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

type GenerationError struct {
	Path    string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type MultiError struct {
	Errors []*GenerationError
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var msgs []string
	for _, err := range m.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("multiple errors:\n%s", strings.Join(msgs, "\n"))
}

// Unwrap lets errors.Is and errors.As see every collected error.
func (m *MultiError) Unwrap() []error {
	errs := make([]error, len(m.Errors))
	for i, err := range m.Errors {
		errs[i] = err
	}
	return errs
}

func (m *MultiError) Add(path, message string, err error) {
	m.Errors = append(m.Errors, &GenerationError{
		Path:    path,
		Message: message,
		Err:     err,
	})
}

func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}
