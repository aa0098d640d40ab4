package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/laurel/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given no file and no env overrides", t, func() {
		os.Unsetenv("LAUREL_CONFIG")
		os.Unsetenv("LAUREL_ADDR")
		os.Unsetenv("LAUREL_STORE_BACKEND")

		Convey("Then Load returns the defaults", func() {
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, config.New().Addr)
		})
	})

	Convey("Given env overrides", t, func() {
		os.Setenv("LAUREL_ADDR", ":7070")
		os.Setenv("LAUREL_BALLOT_QUEUE_SIZE", "123")
		Reset(func() {
			os.Unsetenv("LAUREL_ADDR")
			os.Unsetenv("LAUREL_BALLOT_QUEUE_SIZE")
		})

		Convey("Then env wins over defaults", func() {
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.BallotQueueSize, ShouldEqual, 123)
		})
	})

	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "laurel.yaml")
		body := []byte("addr: \":6060\"\nstore_backend: postgres\npostgres_dsn: \"postgres://u:p@db:5432/awards\"\n")
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		os.Setenv("LAUREL_CONFIG", path)
		Reset(func() { os.Unsetenv("LAUREL_CONFIG") })

		Convey("Then file values are applied", func() {
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.StoreBackend, ShouldEqual, config.BackendPostgres)
			So(cfg.PostgresDSN, ShouldEqual, "postgres://u:p@db:5432/awards")
		})

		Convey("And env still wins over the file", func() {
			os.Setenv("LAUREL_ADDR", ":5050")
			Reset(func() { os.Unsetenv("LAUREL_ADDR") })

			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
		})
	})

	Convey("Given an invalid store backend", t, func() {
		os.Setenv("LAUREL_STORE_BACKEND", "cassandra")
		Reset(func() { os.Unsetenv("LAUREL_STORE_BACKEND") })

		Convey("Then Load fails with ErrInvalidConfig", func() {
			_, err := config.Load(ctx)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
