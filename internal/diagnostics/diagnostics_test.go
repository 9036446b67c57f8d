package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/mambacheck/internal/token"
)

func at(line, col int) token.Token {
	return token.Token{Lexeme: "x", Line: line, Column: col}
}

func TestCollectorDropsDuplicates(t *testing.T) {
	c := NewCollector("main.mamba")
	c.Add(NewError(ErrUndefinedSymbol, at(1, 1), "undefined name 'x'"))
	c.Add(NewError(ErrUndefinedSymbol, at(1, 1), "undefined name 'x'"))
	c.Add(NewError(ErrTypeMismatch, at(1, 1), "undefined name 'x'"))
	c.Add(nil)
	require.Equal(t, 2, c.Len())
	require.Equal(t, "main.mamba", c.Items()[0].File)

	// Items is a copy.
	items := c.Items()
	items[0] = nil
	require.NotNil(t, c.Items()[0])
}

func TestMergeSortsByFileAndPosition(t *testing.T) {
	a := NewCollector("b.mamba")
	a.Add(NewError(ErrTypeMismatch, at(2, 1), "second"))
	b := NewCollector("a.mamba")
	b.Add(NewError(ErrTypeMismatch, at(9, 4), "late"))
	b.Add(NewError(ErrTypeMismatch, at(3, 7), "first"))
	b.Add(NewWarning(ErrUncaughtRaise, at(3, 7), "same position"))

	got := Merge(a.Items(), b.Items())
	var msgs []string
	for _, d := range got {
		msgs = append(msgs, d.Message)
	}
	require.Equal(t, []string{"first", "same position", "late", "second"}, msgs)
}

func TestDiagnosticError(t *testing.T) {
	d := NewErrorf(ErrArityMismatch, at(4, 2), "'%s' expects %d arguments, got %d", "f", 2, 1)
	d.File = "main.mamba"
	require.Equal(t, "main.mamba:4:2: error[ArityMismatchError]: 'f' expects 2 arguments, got 1", d.Error())
	require.True(t, d.IsError())

	w := NewWarning(ErrUncaughtRaise, at(1, 1), "may escape")
	require.False(t, w.IsError())
	require.Equal(t, "1:1: warning[UncaughtRaiseWarning]: may escape", w.Error())

	require.True(t, HasErrors([]*DiagnosticError{w, d}))
	require.False(t, HasErrors([]*DiagnosticError{w}))
}
