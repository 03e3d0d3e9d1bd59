package docpost

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReimportsChangedContent(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("first.rst", "First\n=====\n\n:date: 2011-09-01\n")

	a := New(Config{}, WithStore(setupTestStore(t)))
	_, err := a.Import(context.Background(), os.DirFS(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, dir) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register before the change.
	time.Sleep(100 * time.Millisecond)
	write("second.rst", "Second\n======\n\n:date: 2012-09-01\n")

	require.Eventually(t, func() bool {
		_, err := a.Store.GetPostAny("second")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
