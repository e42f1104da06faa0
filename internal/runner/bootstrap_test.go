package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_RunsCommand(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	b := NewBootstrap(root, BootstrapSpec{Command: []string{"sh", "-c", "echo provisioned; touch done.marker"}})

	result, err := b.Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "provisioned")
	assert.FileExists(t, filepath.Join(root, "done.marker"))
}

func TestBootstrap_SkipsWhenMarkerPresent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".provisioned"), nil, 0o644))

	b := NewBootstrap(root, BootstrapSpec{
		Command:   []string{"sh", "-c", "exit 1"},
		SkipFiles: []string{".provisioned"},
	})

	result, err := b.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Contains(t, result.SkipReason, ".provisioned")
}

func TestBootstrap_ForceIgnoresMarkers(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".provisioned"), nil, 0o644))

	b := NewBootstrap(root, BootstrapSpec{
		Command:   []string{"sh", "-c", "echo ran"},
		SkipFiles: []string{".provisioned"},
	})

	result, err := b.Run(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Contains(t, result.Stdout, "ran")
}

func TestBootstrap_FailingCommand(t *testing.T) {
	t.Parallel()

	b := NewBootstrap(t.TempDir(), BootstrapSpec{Command: []string{"sh", "-c", "exit 7"}})
	result, err := b.Run(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 7, result.ExitCode)
}

func TestBootstrap_EmptyCommand(t *testing.T) {
	t.Parallel()

	b := NewBootstrap(t.TempDir(), BootstrapSpec{})
	_, err := b.Run(context.Background(), false)
	require.Error(t, err)
}
