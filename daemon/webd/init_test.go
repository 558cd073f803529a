package webd

import (
	"github.com/rotblauer/gpxnap/params"
	"time"
)

// newTestWebDaemon creates a new WebDaemon for testing purposes.
// The edit func, if any, adjusts the default test config first.
func newTestWebDaemon(edit func(c *params.WebDaemonConfig)) *WebDaemon {
	config := params.DefaultTestWebDaemonConfig()
	config.Simplify.StayRadius = 10
	config.Simplify.MinStayDuration = 10 * time.Minute
	config.Simplify.FrequentZone = nil
	config.Simplify.DefaultProfile = params.RetentionProfile{MaxRetainedPoints: 3, MinMoveDistance: 30}
	if edit != nil {
		edit(config)
	}
	daemon, err := NewWebDaemon(config)
	if err != nil {
		panic(err)
	}
	return daemon
}
