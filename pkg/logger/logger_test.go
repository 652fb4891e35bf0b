package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithLevel("info")), ShouldBeNil)
		ctx := context.Background()

		Convey("When an info line is logged with fields", func() {
			Named("sweep").With(String("run_id", "r1")).Info(ctx, "done", Int("rows", 3), Error(errors.New("boom")))
			out := buf.String()

			Convey("Then the message, component and fields appear", func() {
				So(out, ShouldContainSubstring, "msg=done")
				So(out, ShouldContainSubstring, "component=sweep")
				So(out, ShouldContainSubstring, "run_id=r1")
				So(out, ShouldContainSubstring, "rows=3")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When debug lines are logged at info level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then they are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible")

			Convey("Then debug lines appear", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})

		Convey("When JSON output is selected", func() {
			buf.Reset()
			So(Init(WithWriter(&buf), WithJSON(true)), ShouldBeNil)
			Get().Warn(ctx, "careful", Float64("roi", 1.5))

			Convey("Then each line is a JSON object", func() {
				line := strings.TrimSpace(buf.String())
				So(strings.HasPrefix(line, "{"), ShouldBeTrue)
				So(line, ShouldContainSubstring, `"roi":1.5`)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, ok := range []string{"debug", "info", "", "warn", "warning", "error"} {
			So(SetLevelString(ok), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(Init(WithLevel("loud")), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Named("x").Error(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
