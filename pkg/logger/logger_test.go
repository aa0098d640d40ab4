package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/okian/laurel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello",
					logger.String("k", "v"),
					logger.Int("n", 1),
					logger.Float64("f", 1.5),
				)
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a scoped logger", func() {
			So(logger.Named("scoring"), ShouldNotBeNil)
		})

		Convey("Then Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})

	Convey("Given level configuration", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When valid level strings are applied", func() {
			for _, lvl := range []string{"debug", "info", "WARN", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When an unknown level string is applied", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("When a level is set directly", func() {
			So(func() { logger.SetLevel(slog.LevelDebug) }, ShouldNotPanic)
		})
	})
}
