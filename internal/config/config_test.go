package config_test

import (
	"testing"

	"github.com/okian/laurel/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then sensible defaults are set", func() {
			So(cfg.Addr, ShouldNotBeEmpty)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.StoreBackend, ShouldEqual, config.BackendMemory)
			So(cfg.BallotQueueSize, ShouldBeGreaterThan, 0)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.DedupeSize, ShouldBeGreaterThan, 0)
			So(cfg.RecomputeTimeoutMS, ShouldBeGreaterThan, 0)
		})
	})
}
