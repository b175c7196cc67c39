package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/okian/matchdesk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)
		log := logger.Get()
		ctx := context.Background()

		Convey("Then all levels log without panicking", func() {
			So(func() {
				log.Debug(ctx, "debug line", logger.String("k", "v"))
				log.Info(ctx, "info line", logger.Int("n", 1), logger.Int64("m", 2))
				log.Warn(ctx, "warn line", logger.Float64("f", 1.5), logger.Bool("b", true))
				log.Error(ctx, "error line", logger.Error(errors.New("boom")), logger.Any("x", struct{}{}))
			}, ShouldNotPanic)
		})

		Convey("And named loggers derive cleanly", func() {
			named := logger.Named("desk")
			So(named, ShouldNotBeNil)
			So(func() { named.Info(ctx, "named line") }, ShouldNotPanic)
		})

		Convey("And Sync is a no-op", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})

	Convey("Given level configuration", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then known level strings parse", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
			logger.SetLevel(slog.LevelInfo)
		})

		Convey("And unknown level strings are rejected", func() {
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
