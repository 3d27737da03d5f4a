package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/arbscout/internal/config"
)

func TestCloseRunsClosersOnceInReverseOrder(t *testing.T) {
	cfg := config.Defaults()
	a := New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var order []int
	a.closers = append(a.closers,
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	)

	a.Close()
	// A second Close, as when the fatal exit path closes before the deferred
	// call would have, must be a no-op.
	a.Close()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("closer order = %v, want [2 1]", order)
	}
}
