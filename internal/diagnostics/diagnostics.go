package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/mambacheck/internal/token"
)

// ErrorCode identifies the kind of a diagnostic. The string value is the
// public taxonomy name reported to tools.
type ErrorCode string

const (
	ErrUndefinedSymbol         ErrorCode = "UndefinedSymbolError"
	ErrDuplicateDefinition     ErrorCode = "DuplicateDefinitionError"
	ErrCyclicInheritance       ErrorCode = "CyclicInheritanceError"
	ErrAbstractNotImplemented  ErrorCode = "AbstractMethodNotImplementedError"
	ErrInvalidGenericArity     ErrorCode = "InvalidGenericArityError"
	ErrTypeMismatch            ErrorCode = "TypeMismatchError"
	ErrArityMismatch           ErrorCode = "ArityMismatchError"
	ErrUnresolvedOverload      ErrorCode = "UnresolvedOverloadError"
	ErrIncompatibleCatch       ErrorCode = "IncompatibleExceptionCatchError"
	ErrUnreachableExceptCase   ErrorCode = "UnreachableExceptCaseError"
	ErrInvalidBaseDispatch     ErrorCode = "InvalidBaseDispatchError"
	ErrOptionalAccess          ErrorCode = "OptionalAccessError"
	ErrUninferredAttributeType ErrorCode = "UninferredAttributeTypeWarning"
	ErrUncaughtRaise           ErrorCode = "UncaughtRaiseWarning"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// DiagnosticError is a single checker finding. It implements error so it can
// travel through ordinary error plumbing, but the checker itself only ever
// collects these as values.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	File     string
	Message  string
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, e.Severity, e.Code, e.Message)
}

// IsError reports whether the diagnostic rejects the program.
func (e *DiagnosticError) IsError() bool {
	return e.Severity == SeverityError
}

func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Token: tok, Message: msg}
}

func NewErrorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

func NewWarning(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Token: tok, Message: msg}
}

// HasErrors reports whether any diagnostic in the list has error severity.
func HasErrors(diags []*DiagnosticError) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by file, then source position. The sort is stable so
// diagnostics at the same position keep their emission order.
func Sort(diags []*DiagnosticError) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Token.Line != b.Token.Line {
			return a.Token.Line < b.Token.Line
		}
		return a.Token.Column < b.Token.Column
	})
}
