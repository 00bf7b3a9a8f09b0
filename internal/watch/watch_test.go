package watch

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFile_ReportsDebouncedChanges(t *testing.T) {
	path := testutil.WriteFile(t, "store.yaml", "items: []\n")
	other := filepath.Join(filepath.Dir(path), "other.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- File(ctx, path, 50*time.Millisecond, testutil.NewTestLogger(t), func() {
			calls.Add(1)
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	testutil.Rewrite(t, other, "x")
	for i := 0; i < 3; i++ {
		testutil.Rewrite(t, path, "items: []\n")
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)

	// Other files never trigger.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFile_MissingDirectory(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "nope", "store.yaml"), 0, nil, func() {})
	assert.Error(t, err)
}
