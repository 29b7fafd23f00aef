package commands

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	args, ok := Parse("cmd spawn --x 1   --y 2")
	require.True(t, ok)
	assert.Equal(t, []string{"spawn", "--x", "1", "--y", "2"}, args)

	args, ok = Parse("cmd ")
	assert.True(t, ok)
	assert.Nil(t, args)

	_, ok = Parse("hello there")
	assert.False(t, ok)
	_, ok = Parse("CMD spawn")
	assert.False(t, ok)
}

func TestExecuteParsesFlagsPerInvocation(t *testing.T) {
	r := NewRegistry()
	fs := NewFlagSet("spawn")
	x := fs.Float32("x", 0, "x position")
	count := fs.IntP("count", "n", 1, "how many")
	var gotX []float32
	var gotCount []int
	var rest []string
	r.Register("spawn", fs, func(args []string) error {
		gotX = append(gotX, *x)
		gotCount = append(gotCount, *count)
		rest = args
		return nil
	})

	require.NoError(t, r.Execute([]string{"spawn", "--x", "2.5", "-n", "3", "box"}))
	require.NoError(t, r.Execute([]string{"spawn"}))

	assert.Equal(t, []float32{2.5, 0}, gotX)
	assert.Equal(t, []int{3, 1}, gotCount)
	assert.Empty(t, rest)
}

func TestExecuteErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register("fail", nil, func([]string) error { return boom })

	assert.Equal(t, ErrMissingCommand, r.Execute(nil))
	assert.Equal(t, ErrUnknownCommand, errors.Cause(r.Execute([]string{"nope"})))
	assert.Error(t, r.Execute([]string{"fail", "--bogus"}))
	assert.Equal(t, boom, r.Execute([]string{"fail"}))
}

func TestNamesAndUsage(t *testing.T) {
	r := NewRegistry()
	fs := NewFlagSet("gravity")
	fs.Float32("y", -9.81, "vertical acceleration")
	r.Register("gravity", fs, func([]string) error { return nil })
	r.Register("pause", nil, func([]string) error { return nil })

	assert.Equal(t, []string{"gravity", "pause"}, r.Names())
	usage, ok := r.Usage("gravity")
	require.True(t, ok)
	assert.Contains(t, usage, "--y")
	_, ok = r.Usage("missing")
	assert.False(t, ok)
}
