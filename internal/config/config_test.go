package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/demandgen/internal/config"
	"github.com/okian/demandgen/internal/domain/simulator"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the reference defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.TickMinMS, convey.ShouldEqual, 2000)
			convey.So(cfg.TickMaxMS, convey.ShouldEqual, 3000)
			convey.So(cfg.HistoryWindow, convey.ShouldEqual, 30)
			convey.So(cfg.ChartPoints, convey.ShouldEqual, 8)
			convey.So(cfg.ChartDomainMin, convey.ShouldEqual, 50)
			convey.So(cfg.ChartDomainMax, convey.ShouldEqual, 100)
			convey.So(cfg.ViewportWidth, convey.ShouldEqual, 100)
			convey.So(cfg.ViewportHeight, convey.ShouldEqual, 50)
			convey.So(cfg.ReportSchedule, convey.ShouldEqual, "@every 1m")
			convey.So(cfg.RandomSeed, convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then every simulated field should have bounds", func() {
			convey.So(len(cfg.Fields), convey.ShouldEqual, len(simulator.Fields))
			convey.So(cfg.Fields["growth_roi"], convey.ShouldResemble, config.FieldConfig{Min: 280, Max: 340, Range: 2})
			convey.So(cfg.Fields["success_rate"], convey.ShouldResemble, config.FieldConfig{Min: 65, Max: 98, Range: 2.5})
		})

		convey.Convey("Then the tick delay should convert to durations", func() {
			lo, hi := cfg.TickDelay()
			convey.So(lo, convey.ShouldEqual, 2*time.Second)
			convey.So(hi, convey.ShouldEqual, 3*time.Second)
		})

		convey.Convey("Then field specs should mirror the simulator defaults", func() {
			convey.So(cfg.FieldSpecs(), convey.ShouldResemble, simulator.DefaultSpecs())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(c *config.Config)
			msg    string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr must not be empty"},
			{"zero tick min", func(c *config.Config) { c.TickMinMS = 0 }, "tick bounds"},
			{"inverted tick bounds", func(c *config.Config) { c.TickMaxMS = 1000 }, "tick bounds"},
			{"short window", func(c *config.Config) { c.HistoryWindow = 1 }, "history_window"},
			{"no chart points", func(c *config.Config) { c.ChartPoints = 0 }, "chart_points"},
			{"empty domain", func(c *config.Config) { c.ChartDomainMax = c.ChartDomainMin }, "chart domain"},
			{"zero viewport", func(c *config.Config) { c.ViewportHeight = 0 }, "viewport"},
			{"zero buffer", func(c *config.Config) { c.SubscriberBuffer = 0 }, "subscriber_buffer"},
			{"zero subscribers", func(c *config.Config) { c.MaxSubscribers = 0 }, "max_subscribers"},
			{"inverted field", func(c *config.Config) {
				c.Fields["growth_roi"] = config.FieldConfig{Min: 10, Max: 5}
			}, "exceeds max"},
			{"negative range", func(c *config.Config) {
				c.Fields["chart_data"] = config.FieldConfig{Min: 0, Max: 1, Range: -1}
			}, "range must not be negative"},
			{"unknown field", func(c *config.Config) {
				c.Fields["bounce_rate"] = config.FieldConfig{Min: 0, Max: 1}
			}, "unknown field"},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should be rejected as invalid", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
				})
			})
		}

		convey.Convey("When a field collapses to a single value", func() {
			cfg.Fields["total_leads"] = config.FieldConfig{Min: 50, Max: 50}

			convey.Convey("Then it should still be valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
