package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/laurel/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a ballot key is recorded for the first time", func() {
			key := dedupe.Key("user-1", "nom-1")
			seen := d.SeenAndRecord(ctx, key)

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same key is a duplicate on repeat", func() {
				So(d.SeenAndRecord(ctx, key), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a different nominee for the same user is not a duplicate", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("user-1", "nom-2")), ShouldBeFalse)
			})
		})

		Convey("When a recorded key is unrecorded", func() {
			key := dedupe.Key("user-2", "nom-1")
			d.SeenAndRecord(ctx, key)
			d.Unrecord(ctx, key)

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When more keys arrive than the bound allows", func() {
			for i := 0; i < 5; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("user-%d|nom-1", i))
			}

			Convey("Then the size stays at the bound", func() {
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("And the oldest keys were evicted", func() {
				So(d.SeenAndRecord(ctx, "user-0|nom-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "user-4|nom-1"), ShouldBeTrue)
			})
		})
	})

	Convey("Given concurrent recorders", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When many goroutines record the same key", func() {
			const workers = 32
			newCount := make(chan bool, workers)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					newCount <- !d.SeenAndRecord(ctx, "user-x|nom-x")
				}()
			}
			wg.Wait()
			close(newCount)

			Convey("Then exactly one records it as new", func() {
				fresh := 0
				for isNew := range newCount {
					if isNew {
						fresh++
					}
				}
				So(fresh, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
