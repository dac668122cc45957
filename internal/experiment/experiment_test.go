package experiment_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/carbonbox/internal/carbon"
	"github.com/san-kum/carbonbox/internal/config"
	"github.com/san-kum/carbonbox/internal/dynamo"
	"github.com/san-kum/carbonbox/internal/experiment"
	"github.com/san-kum/carbonbox/internal/forcing"
)

var _ = Describe("Experiment", func() {
	var (
		cfg *config.Config
		ctx context.Context
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		ctx = context.Background()
	})

	Describe("Run", func() {
		It("integrates the default A2 run on 4 boxes", func() {
			res, err := experiment.New(cfg, nil, nil).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Times).To(HaveLen(251))
			Expect(res.States).To(HaveLen(251))
			Expect(res.Imag).To(BeNil())
			Expect(res.Integrator).To(Equal("rk4"))
			Expect(res.Metrics["mass_added"]).To(BeNumerically("~", 2344.375, 1e-6))

			atm := res.Atmosphere()
			Expect(atm[250]).To(BeNumerically(">", atm[200]))
		})

		It("keeps total mass on an unforced complex run", func() {
			cfg.Forcing = forcing.Params{Scenario: forcing.KindNone}
			cfg.Complex = true
			cfg.T0, cfg.Tf, cfg.Steps = 0, 100, 100

			res, err := experiment.New(cfg, nil, nil).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Imag).To(HaveLen(101))
			Expect(res.Metrics["mass_drift"]).To(BeNumerically("<", 1e-6))
			Expect(res.Metrics["max_imag"]).To(BeZero())
		})

		It("runs the 9-box topology from a preset", func() {
			res, err := experiment.New(config.GetPreset("9box", "a2"), nil, nil).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Topology.Len()).To(Equal(9))
			Expect(res.Final()).To(HaveLen(9))
			Expect(res.Metrics).To(HaveKey("final_deep_water"))
			Expect(res.Metrics).To(HaveKey("peak_atmosphere"))
		})

		It("accepts registered topologies", func() {
			reg := experiment.NewRegistry()
			reg.Register("pair", func() *carbon.Topology {
				topo, err := carbon.NewTopology("pair", []string{"a", "b"}, [][]float64{{0, 1}, {1, 0}}, []float64{10, 10})
				Expect(err).NotTo(HaveOccurred())
				return topo
			})
			cfg.Topology = "pair"
			cfg.Forcing = forcing.Params{Scenario: forcing.KindNone}

			res, err := experiment.New(cfg, reg, nil).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final()[0]).To(BeNumerically("~", 10, 1e-9))
			Expect(reg.ListTopologies()).To(Equal([]string{"4box", "9box", "pair"}))
		})

		It("logs start and finish with run fields", func() {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			_, err := experiment.New(cfg, nil, logger).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(hook.Entries).To(HaveLen(2))
			last := hook.LastEntry()
			Expect(last.Message).To(Equal("run finished"))
			Expect(last.Data).To(HaveKeyWithValue("topology", "4box"))
			Expect(last.Data).To(HaveKeyWithValue("scenario", "table:A2"))
			Expect(last.Data).To(HaveKey("mass_drift"))
		})

		It("warns when the step size is unstable", func() {
			logger, hook := test.NewNullLogger()
			cfg.Topology = "9box"

			_, err := experiment.New(cfg, nil, logger).Run(ctx)
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())

			warned := false
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel && e.Message == "step size exceeds the stability limit of the integrator" {
					warned = true
				}
			}
			Expect(warned).To(BeTrue())
		})

		DescribeTable("rejects bad configuration",
			func(mutate func(*config.Config), target error) {
				mutate(cfg)
				_, err := experiment.New(cfg, nil, nil).Run(ctx)
				Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
			},
			Entry("unknown topology", func(c *config.Config) { c.Topology = "12box" }, dynamo.ErrConfig),
			Entry("unknown integrator", func(c *config.Config) { c.Integrator = "rk45" }, dynamo.ErrConfig),
			Entry("unknown table", func(c *config.Config) { c.Forcing.Table = "B1" }, dynamo.ErrDomain),
			Entry("target out of range", func(c *config.Config) { c.Forcing.Target = 4 }, dynamo.ErrShape),
			Entry("zero amplitude", func(c *config.Config) {
				c.Forcing = forcing.Params{Scenario: forcing.KindPeriodic, Period: 10}
			}, dynamo.ErrConfig),
			Entry("empty interval", func(c *config.Config) { c.Tf = c.T0 }, dynamo.ErrConfig),
		)

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := experiment.New(cfg, nil, nil).Run(canceled)
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("Compare", func() {
		It("returns results in variant order", func() {
			deriv := cfg.Clone()
			mass := cfg.Clone()
			mass.Forcing.Mode = "mass"
			cessation := cfg.Clone()
			cessation.Forcing.Table = "A2-cessation"
			cessation.Tf = 2200
			cessation.Steps = 350

			results, err := experiment.Compare(ctx, []experiment.Variant{
				{Name: "derivative", Config: deriv},
				{Name: "mass", Config: mass},
				{Name: "cessation", Config: cessation},
			}, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Forcing.Mode).To(Equal(forcing.AddToDerivative))
			Expect(results[1].Forcing.Mode).To(Equal(forcing.AddToMass))
			Expect(results[2].Times[len(results[2].Times)-1]).To(BeNumerically("~", 2200, 1e-9))

			// mass injection never adds carbon to the system
			Expect(results[1].Metrics["mass_drift"]).To(BeNumerically("<", 1e-6))
			Expect(results[0].Metrics["mass_added"]).To(BeNumerically(">", 1000))
		})

		It("fails when any variant fails", func() {
			bad := cfg.Clone()
			bad.Topology = "nope"
			_, err := experiment.Compare(ctx, []experiment.Variant{
				{Name: "ok", Config: cfg},
				{Name: "bad", Config: bad},
			}, nil, nil)
			Expect(err).To(MatchError(ContainSubstring("variant bad")))
		})
	})

	Describe("Convergence", func() {
		It("shrinks error with more steps and favours rk4", func() {
			points, err := experiment.Convergence(ctx, cfg, []string{"euler", "rk4"}, []int{2000, 500, 1000}, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(6))

			euler, rk4 := points[:3], points[3:]
			Expect(euler[0].Steps).To(Equal(500))
			for i := 1; i < 3; i++ {
				Expect(euler[i].MaxError).To(BeNumerically("<", euler[i-1].MaxError))
			}
			for i := range rk4 {
				Expect(rk4[i].MaxError).To(BeNumerically("<", euler[i].MaxError))
			}
		})

		It("requires integrators and steps", func() {
			_, err := experiment.Convergence(ctx, cfg, nil, []int{10}, nil, nil)
			Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
		})
	})

	Describe("RunPowerLaw", func() {
		It("matches the linear decay for B=1", func() {
			res, err := experiment.RunPowerLaw(ctx, experiment.PowerLawRun{
				System:     carbon.PowerLaw{A: -1, B: 1},
				Integrator: "rk4",
				Y0:         []float64{1},
				T0:         0,
				Tf:         1,
				Steps:      1000,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Real[len(res.Real)-1][0]).To(BeNumerically("~", math.Exp(-1), 1e-6))
			Expect(res.MaxImag).To(BeZero())
		})

		It("checks the initial state length", func() {
			_, err := experiment.RunPowerLaw(ctx, experiment.PowerLawRun{
				System:     carbon.PowerLaw{A: -1, B: 0.8, Coupled: true},
				Integrator: "rk4",
				Y0:         []float64{1},
				Tf:         1,
				Steps:      10,
			})
			Expect(errors.Is(err, dynamo.ErrShape)).To(BeTrue())
		})
	})
})
