package dedupe_test

import (
	"sync"
	"testing"

	"github.com/okian/ytairdrop/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(4))

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a day is recorded twice", func() {
			first := d.SeenAndRecord(3)
			second := d.SeenAndRecord(3)

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When days are recorded concurrently", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(day int) {
					defer wg.Done()
					if !d.SeenAndRecord(day % 10) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Convey("Then each day is new exactly once", func() {
				So(fresh, ShouldEqual, 10)
				So(d.Size(), ShouldEqual, 10)
			})
		})
	})
}

func TestEntryDays(t *testing.T) {
	Convey("Given a 10 day program", t, func() {
		Convey("When no subset is supplied", func() {
			days := dedupe.EntryDays(nil, 10)

			Convey("Then every day is a candidate", func() {
				So(days, ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
			})
		})

		Convey("When the subset has repeats and out of range days", func() {
			days := dedupe.EntryDays([]int{5, -1, 0, 5, 10, 9, 0, 42}, 10)

			Convey("Then they are dropped and order is kept", func() {
				So(days, ShouldResemble, []int{5, 0, 9})
			})
		})

		Convey("When the subset is empty", func() {
			So(dedupe.EntryDays([]int{}, 10), ShouldBeEmpty)
		})
	})

	Convey("Given an empty program", t, func() {
		So(dedupe.EntryDays(nil, 0), ShouldBeEmpty)
	})
}

func TestFDVs(t *testing.T) {
	Convey("Given FDVs with a repeat", t, func() {
		got := dedupe.FDVs([]float64{2e7, 5e7, 2e7, 1e8, 5e7})

		Convey("Then the first occurrence is kept in order", func() {
			So(got, ShouldResemble, []float64{2e7, 5e7, 1e8})
		})
	})

	Convey("Given no FDVs", t, func() {
		So(dedupe.FDVs(nil), ShouldBeEmpty)
	})
}
