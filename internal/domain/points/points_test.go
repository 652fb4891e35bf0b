package points_test

import (
	"errors"
	"testing"

	"github.com/okian/ytairdrop/internal/domain/curve"
	"github.com/okian/ytairdrop/internal/domain/model"
	"github.com/okian/ytairdrop/internal/domain/points"
	. "github.com/smartystreets/goconvey/convey"
)

func linearPrice(initial float64) curve.PriceCurve {
	c, err := curve.NewPriceCurve(initial, curve.LinearToZero)
	if err != nil {
		panic(err)
	}
	return c
}

func TestComputeNetworkAggregate(t *testing.T) {
	Convey("Given a flat 1M value locked and a flat 30% market share", t, func() {
		share := 0.3
		cfg := points.NetworkConfig{
			Mode:             points.ModeAggregate,
			Value:            curve.FlatValue(1_000_000),
			Share:            curve.FlatShare(&share, 0),
			MarketMultiplier: 5,
			DirectMultiplier: 1,
		}

		Convey("When network points are computed over 10 days", func() {
			net, err := points.ComputeNetwork(cfg, 10)
			So(err, ShouldBeNil)

			Convey("Then the blended multiplier is 2.2 every day", func() {
				for _, m := range net.Multipliers {
					So(m, ShouldAlmostEqual, 2.2, 1e-12)
				}
			})

			Convey("Then the total is 22,000,000", func() {
				So(net.Total, ShouldAlmostEqual, 22_000_000, 1e-6)
				So(net.AverageValueLocked, ShouldEqual, 1_000_000)
				So(net.EffectiveShare, ShouldAlmostEqual, 0.3, 1e-12)
			})
		})

		Convey("When the market starts on day 4", func() {
			cfg.MarketStartDay = 4
			net, err := points.ComputeNetwork(cfg, 10)
			So(err, ShouldBeNil)

			Convey("Then earlier days earn the direct multiplier only", func() {
				for d := 0; d < 4; d++ {
					So(net.Multipliers[d], ShouldEqual, 1)
				}
				So(net.Multipliers[4], ShouldAlmostEqual, 2.2, 1e-12)
				So(net.Total, ShouldAlmostEqual, 4*1_000_000+6*2_200_000, 1e-6)
				So(net.EffectiveShare, ShouldAlmostEqual, 0.18, 1e-12)
			})
		})

		Convey("When the market starts after the program ends", func() {
			cfg.MarketStartDay = 50
			net, _ := points.ComputeNetwork(cfg, 10)

			Convey("Then every day is direct only", func() {
				So(net.Total, ShouldAlmostEqual, 10_000_000, 1e-6)
				So(net.EffectiveShare, ShouldEqual, 0)
			})
		})

		Convey("When a linear share is re-based to the market's lifetime", func() {
			cfg.Share = curve.LinearShare(0, 1)
			cfg.MarketStartDay = 5
			net, _ := points.ComputeNetwork(cfg, 10)

			Convey("Then the share curve runs from the start day to the end", func() {
				So(net.Multipliers[5], ShouldAlmostEqual, 1, 1e-12)
				So(net.Multipliers[9], ShouldAlmostEqual, 5, 1e-12)
			})
		})

		Convey("When a positive total override is supplied", func() {
			cfg.TotalOverride = 123
			net, _ := points.ComputeNetwork(cfg, 10)

			Convey("Then it replaces the computed total", func() {
				So(net.Total, ShouldEqual, 123)
				So(len(net.Daily), ShouldEqual, 10)
			})
		})
	})
}

func TestComputeNetworkPerAsset(t *testing.T) {
	Convey("Given two assets", t, func() {
		assets := []model.AssetConfig{
			{Name: "a", MarketValueLocked: 100, DirectValueLocked: 300, MarketMultiplier: 5, DirectMultiplier: 1},
			{Name: "b", MarketValueLocked: 100, DirectValueLocked: 0, MarketMultiplier: 2, DirectMultiplier: 1},
		}
		value, _ := curve.NewValueCurve(curve.ValueLinear, 50, 150)
		cfg := points.NetworkConfig{
			Mode:   points.ModePerAsset,
			Value:  value,
			Assets: assets,
		}

		Convey("When scaling is proportional", func() {
			net, err := points.ComputeNetwork(cfg, 3)
			So(err, ShouldBeNil)

			Convey("Then the combined baseline follows value[d]/avg", func() {
				// combined = 300 + 500 + 200 = 1000, value = 50,100,150, avg = 100
				So(net.Daily[0], ShouldAlmostEqual, 500, 1e-9)
				So(net.Daily[1], ShouldAlmostEqual, 1000, 1e-9)
				So(net.Daily[2], ShouldAlmostEqual, 1500, 1e-9)
				So(net.Total, ShouldAlmostEqual, 3000, 1e-9)
				So(net.EffectiveShare, ShouldAlmostEqual, 200.0/500.0, 1e-12)
			})
		})

		Convey("When scaling is constant", func() {
			cfg.Scaling = points.ScaleConstant
			net, _ := points.ComputeNetwork(cfg, 3)

			Convey("Then every day uses the baseline unscaled", func() {
				So(net.Daily, ShouldResemble, []float64{1000, 1000, 1000})
			})
		})

		Convey("When the market starts on day 2", func() {
			cfg.Scaling = points.ScaleConstant
			cfg.MarketStartDay = 2
			net, _ := points.ComputeNetwork(cfg, 3)

			Convey("Then earlier days use the direct-only baseline", func() {
				So(net.Daily, ShouldResemble, []float64{300, 300, 1000})
			})
		})

		Convey("When the assets hold no value", func() {
			cfg.Assets = []model.AssetConfig{{Name: "empty"}}
			net, _ := points.ComputeNetwork(cfg, 3)

			Convey("Then no scaling is applied and the share is zero", func() {
				So(net.Total, ShouldEqual, 0)
				So(net.EffectiveShare, ShouldEqual, 0)
			})
		})

		Convey("When no assets are configured", func() {
			cfg.Assets = nil
			_, err := points.ComputeNetwork(cfg, 3)

			Convey("Then it fails with ErrInvalidConfig", func() {
				So(errors.Is(err, model.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestParseNames(t *testing.T) {
	Convey("Given historical mode and scaling names", t, func() {
		simple, err1 := points.ParseMode("simple")
		byTokens, err2 := points.ParseMode("by_tokens")
		shareBased, err3 := points.ParseScaling("share_based")
		empty, err4 := points.ParseScaling("")
		_, bad1 := points.ParseMode("hybrid")
		_, bad2 := points.ParseScaling("log")

		Convey("Then they resolve to the two modes and proportional scaling", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(err3, ShouldBeNil)
			So(err4, ShouldBeNil)
			So(simple, ShouldEqual, points.ModeAggregate)
			So(byTokens, ShouldEqual, points.ModePerAsset)
			So(shareBased, ShouldEqual, points.ScaleProportional)
			So(empty, ShouldEqual, points.ScaleProportional)
			So(errors.Is(bad1, model.ErrInvalidConfig), ShouldBeTrue)
			So(errors.Is(bad2, model.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestUserPoints(t *testing.T) {
	Convey("Given one position spending 1000 at a price decaying from 1.0", t, func() {
		pos := model.UserPosition{Name: "yt", EntryDay: 0, Spend: 1000, Multiplier: 3, Price: linearPrice(1)}

		Convey("When time weighting is off", func() {
			res, total, err := points.Users([]model.UserPosition{pos}, 10, false)
			So(err, ShouldBeNil)

			Convey("Then the user earns 10,000 x multiplier", func() {
				So(res[0].EntryPrice, ShouldEqual, 1)
				So(res[0].Owned, ShouldEqual, 1000)
				So(total, ShouldAlmostEqual, 10_000*3, 1e-9)
			})
		})

		Convey("When time weighting is on", func() {
			_, total, err := points.Users([]model.UserPosition{pos}, 10, true)
			So(err, ShouldBeNil)

			Convey("Then the user earns 5.5 x 1000 x multiplier", func() {
				So(points.Weight(0, 10, true), ShouldEqual, 1)
				So(points.Weight(9, 10, true), ShouldAlmostEqual, 0.1, 1e-12)
				So(total, ShouldAlmostEqual, 5.5*1000*3, 1e-9)
			})
		})

		Convey("When entering later", func() {
			pos.EntryDay = 5
			res, _, err := points.Users([]model.UserPosition{pos}, 10, false)
			So(err, ShouldBeNil)

			Convey("Then days before entry earn nothing", func() {
				price := 1 - 5.0/9.0
				So(res[0].EntryPrice, ShouldAlmostEqual, price, 1e-12)
				So(res[0].Points, ShouldAlmostEqual, 5*1000/price*3, 1e-6)
			})
		})

		Convey("When entering on the day the price hits zero", func() {
			pos.EntryDay = 9
			res, total, _ := points.Users([]model.UserPosition{pos}, 10, false)

			Convey("Then nothing is owned", func() {
				So(res[0].Owned, ShouldEqual, 0)
				So(total, ShouldEqual, 0)
			})
		})

		Convey("When the entry day is outside the program", func() {
			pos.EntryDay = 10
			_, _, err := points.Users([]model.UserPosition{pos}, 10, false)
			So(errors.Is(err, model.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When several positions are held", func() {
			other := pos
			other.Name = "second"
			other.Spend = 500
			res, total, _ := points.Users([]model.UserPosition{pos, other}, 10, false)

			Convey("Then totals add up across positions", func() {
				So(len(res), ShouldEqual, 2)
				So(total, ShouldAlmostEqual, res[0].Points+res[1].Points, 1e-9)
				So(res[1].Points, ShouldAlmostEqual, res[0].Points/2, 1e-9)
			})
		})
	})

	Convey("Given no positions", t, func() {
		_, _, err := points.Users(nil, 10, false)
		So(errors.Is(err, model.ErrInvalidConfig), ShouldBeTrue)
	})
}
