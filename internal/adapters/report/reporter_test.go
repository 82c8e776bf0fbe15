package report_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/okian/demandgen/internal/adapters/report"
	"github.com/okian/demandgen/internal/adapters/repository"
	"github.com/okian/demandgen/internal/domain/model"
	"github.com/okian/demandgen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func referenceSnapshot() model.Snapshot {
	return model.Snapshot{
		Sequence: 7,
		At:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics: model.MetricsState{
			GrowthROI:          312,
			TotalLeads:         52.4,
			ConversionLift:     26.2,
			CPLReduction:       44.5,
			IterationVelocity:  4.8,
			ChartData:          []float64{0.3, 0.45},
			SuccessRateHistory: []float64{70, 75, 80, 84.3},
		},
	}
}

func TestSummarize(t *testing.T) {
	Convey("Given the reference snapshot", t, func() {
		d := report.Summarize(referenceSnapshot())

		Convey("Then the digest should carry the display values", func() {
			So(d.Sequence, ShouldEqual, 7)
			So(d.Readout.GrowthROI, ShouldEqual, "312%")
			So(d.Readout.TotalLeads, ShouldEqual, "52.4k")
			So(d.Readout.SuccessRate, ShouldEqual, "84.3%")
		})

		Convey("Then the window statistics should be computed", func() {
			So(d.RateMin, ShouldEqual, 70)
			So(d.RateMax, ShouldEqual, 84.3)
			So(d.RateMean, ShouldEqual, 77.3)
		})
	})

	Convey("Given a snapshot without history", t, func() {
		s := referenceSnapshot()
		s.Metrics.SuccessRateHistory = nil
		d := report.Summarize(s)

		Convey("Then the statistics should be zero", func() {
			So(d.RateMin, ShouldEqual, 0)
			So(d.RateMax, ShouldEqual, 0)
			So(d.RateMean, ShouldEqual, 0)
		})
	})
}

func TestReporter(t *testing.T) {
	Convey("Given a store holding a snapshot", t, func() {
		ctx := context.Background()
		store := repository.NewInMemoryStore(repository.WithInitial(referenceSnapshot()))

		Convey("When the schedule is invalid", func() {
			_, err := report.New(store, "every now and then")

			Convey("Then construction should fail", func() {
				So(errors.Is(err, report.ErrInvalidSchedule), ShouldBeTrue)
			})
		})

		Convey("When a digest is requested immediately", func() {
			r, err := report.New(store, "@every 1h")
			So(err, ShouldBeNil)
			d, err := r.RunNow(ctx)

			Convey("Then it should summarize the stored snapshot", func() {
				So(err, ShouldBeNil)
				So(d.Sequence, ShouldEqual, 7)
				So(r.Runs(), ShouldEqual, 1)
			})
		})

		Convey("When the schedule fires", func() {
			got := make(chan report.Digest, 4)
			r, err := report.New(store, "@every 1s", report.WithDigestHook(func(d report.Digest) {
				select {
				case got <- d:
				default:
				}
			}))
			So(err, ShouldBeNil)
			r.Start(ctx)
			r.Start(ctx)
			defer r.Stop()

			Convey("Then a digest should be produced", func() {
				select {
				case d := <-got:
					So(d.Readout.ConversionLift, ShouldEqual, "+26.2%")
				case <-time.After(3 * time.Second):
					So("no digest produced", ShouldBeEmpty)
				}
				So(r.Runs(), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})

	Convey("Given an empty store", t, func() {
		r, err := report.New(repository.NewInMemoryStore(), "@every 1h")
		So(err, ShouldBeNil)

		Convey("Then a digest should not be produced", func() {
			_, err := r.RunNow(context.Background())
			So(errors.Is(err, report.ErrNoSnapshot), ShouldBeTrue)
			So(errors.Is(err, repository.ErrEmpty), ShouldBeTrue)
			So(r.Runs(), ShouldEqual, 0)
		})

		Convey("Then stopping a reporter that never started should return", func() {
			r.Stop()
			So(r.Runs(), ShouldEqual, 0)
		})
	})
}

func TestSourceFunc(t *testing.T) {
	Convey("Given a function source", t, func() {
		calls := 0
		src := report.SourceFunc(func(context.Context) (model.Snapshot, error) {
			calls++
			return referenceSnapshot(), nil
		})
		r, err := report.New(src, "@every 1h")
		So(err, ShouldBeNil)

		Convey("Then RunNow should read through it", func() {
			d, err := r.RunNow(context.Background())
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
			So(d.Sequence, ShouldEqual, 7)
		})
	})
}
