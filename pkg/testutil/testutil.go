// Package testutil provides testing utilities for go-anndata
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/JaneliaSciComp/go-anndata/pkg/compression"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// TempStore creates a filesystem store in a temporary directory that is
// removed when the test completes. A nil codec keeps the default.
func TempStore(t *testing.T, codec *compression.Config) *store.FS {
	t.Helper()
	fs, err := store.NewFS(t.TempDir(), codec)
	require.NoError(t, err)
	return fs
}
