package webd

import (
	"testing"

	"github.com/fieldroute/fieldd/api"
	"github.com/fieldroute/fieldd/params"
	"github.com/fieldroute/fieldd/state"
)

// newTestWebDaemon builds a daemon on an in-memory store with no
// routing provider.
func newTestWebDaemon(t *testing.T) *WebDaemon {
	t.Helper()
	t.Setenv("FIELDD_TOKEN", "")
	tracker := api.NewTracker(state.NewMemStore(), nil)
	d, err := NewWebDaemon(params.DefaultWebDaemonConfig(), tracker)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { tracker.Store.Close() })
	return d
}
