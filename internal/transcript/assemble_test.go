package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{" Recommend luxury", "resorts\nin", "\tDjerba. "})
	require.Equal(t, "Recommend luxury resorts in Djerba.", got)
}

func TestAssembleEmptyInput(t *testing.T) {
	t.Parallel()

	require.Empty(t, Assemble(nil))
	require.Empty(t, Assemble([]string{"  ", "\n\t"}))
}

func TestAssembleSkipsWhitespaceOnlySegments(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hotels in Mahdia", Assemble([]string{"  ", "hotels in", "", "Mahdia"}))
}

func TestAssembleIdempotent(t *testing.T) {
	t.Parallel()

	first := Assemble([]string{"family hotels", "in Sousse"})
	require.Equal(t, first, Assemble([]string{first}))
}
