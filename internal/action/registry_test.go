package action

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatisjasongoldstein/beagle/internal/command"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

func mustCopy(t *testing.T, in string) command.Command {
	t.Helper()
	c, err := command.NewCopy(in, "")
	require.NoError(t, err)
	return c
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"main", "css", "about"} {
		require.NoError(t, r.RegisterCommands(name, mustCopy(t, name+".txt")))
	}
	actions, err := r.Discover(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"main", "css", "about"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRejectsDuplicatesAndEmpty(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterCommands("main"))
	err := r.RegisterCommands("main")
	assert.ErrorIs(t, err, errors.ErrConfig)

	assert.Error(t, r.Register("", func(context.Context) ([]command.Command, error) { return nil, nil }))
	assert.Error(t, r.Register("nil", nil))
	assert.Panics(t, func() { r.MustRegister("main", func(context.Context) ([]command.Command, error) { return nil, nil }) })
}

func TestInvokeAttachesActionName(t *testing.T) {
	boom := stderrors.New("boom")
	a := Action{Name: "broken", Run: func(context.Context) ([]command.Command, error) { return nil, boom }}

	_, err := Invoke(context.Background(), a)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAction)
	assert.ErrorIs(t, err, boom)
	name, ok := errors.ContextString(err, "action")
	require.True(t, ok)
	assert.Equal(t, "broken", name)
	assert.Contains(t, err.Error(), "broken")
}

func TestChainRejectsDuplicateNamesAcrossSources(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	require.NoError(t, a.RegisterCommands("main"))
	require.NoError(t, b.RegisterCommands("extra"))

	actions, err := Chain(a, b).Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	require.NoError(t, b.RegisterCommands("main"))
	_, err = Chain(a, b).Discover(context.Background())
	assert.ErrorIs(t, err, errors.ErrConfig)
}
