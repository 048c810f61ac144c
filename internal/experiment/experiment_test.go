package experiment_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/experiment"
	"github.com/san-kum/numeth/internal/expr"
	"github.com/san-kum/numeth/internal/metrics"
)

var _ = Describe("Registry", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	DescribeTable("Lookup resolves names and aliases",
		func(name string, want dynamo.Method) {
			m, err := reg.Lookup(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(want))
		},
		Entry("euler", "euler", dynamo.ImprovedEuler),
		Entry("heun", "heun", dynamo.ImprovedEuler),
		Entry("spanish menu label", "Euler Mejorado", dynamo.ImprovedEuler),
		Entry("display name", "Improved Euler", dynamo.ImprovedEuler),
		Entry("rk4", "RK4", dynamo.RungeKutta4),
		Entry("runge-kutta", " runge-kutta ", dynamo.RungeKutta4),
		Entry("Runge-Kutta 4", "Runge-Kutta 4", dynamo.RungeKutta4),
		Entry("newton", "newton", dynamo.NewtonRaphson),
		Entry("Newton-Raphson", "Newton-Raphson", dynamo.NewtonRaphson),
	)

	It("rejects unknown methods", func() {
		_, err := reg.Lookup("simpson")
		Expect(err).To(MatchError(dynamo.ErrUnknownMethod))
	})

	It("lists aliases per method", func() {
		Expect(reg.Aliases(dynamo.RungeKutta4)).To(ContainElements("rk4", "runge-kutta"))
		Expect(reg.Methods()).To(HaveLen(3))
	})

	It("wraps formula parse failures as configuration errors", func() {
		cfg := config.DefaultConfig(dynamo.RungeKutta4)
		cfg.ODE.Formula = "y + z"

		_, err := reg.Build(cfg)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
		Expect(err).To(MatchError(expr.ErrUnknownSymbol))

		var ce *dynamo.ConfigError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Field).To(Equal("f"))
	})

	It("names the derivative field when f' does not parse", func() {
		cfg := config.DefaultConfig(dynamo.NewtonRaphson)
		cfg.Newton.Derivative = "3*x**2 -"

		_, err := reg.Build(cfg)
		var ce *dynamo.ConfigError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Field).To(Equal("df"))
		Expect(err).To(MatchError(expr.ErrSyntax))
	})

	It("validates before parsing", func() {
		cfg := config.DefaultConfig(dynamo.NewtonRaphson)
		cfg.Newton.Tolerance = 0

		_, err := reg.Build(cfg)
		var ce *dynamo.ConfigError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Field).To(Equal("tol"))
	})
})

var _ = Describe("ParseInputs", func() {
	It("accepts the default form values", func() {
		for _, m := range dynamo.Methods() {
			cfg, err := experiment.ParseInputs(m, experiment.DefaultInputs(m))
			Expect(err).NotTo(HaveOccurred())
			Expect(*cfg).To(Equal(*config.DefaultConfig(m)))
		}
	})

	It("has an input for every field", func() {
		for _, m := range dynamo.Methods() {
			in := experiment.DefaultInputs(m)
			Expect(in).To(HaveLen(len(experiment.FieldNames(m))))
			for _, f := range experiment.FieldNames(m) {
				Expect(in).To(HaveKey(f))
			}
		}
	})

	DescribeTable("rejects raw strings per field",
		func(m dynamo.Method, field, raw string) {
			in := experiment.DefaultInputs(m)
			in[field] = raw

			_, err := experiment.ParseInputs(m, in)
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
			var ce *dynamo.ConfigError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Field).To(Equal(field))
		},
		Entry("non-numeric x0", dynamo.ImprovedEuler, "x0", "abc"),
		Entry("empty y0", dynamo.ImprovedEuler, "y0", ""),
		Entry("zero h", dynamo.RungeKutta4, "h", "0"),
		Entry("fractional n", dynamo.RungeKutta4, "n", "2.5"),
		Entry("negative n", dynamo.RungeKutta4, "n", "-1"),
		Entry("empty f", dynamo.RungeKutta4, "f", "  "),
		Entry("negative tolerance", dynamo.NewtonRaphson, "tol", "-1e-4"),
		Entry("zero max_iter", dynamo.NewtonRaphson, "max_iter", "0"),
		Entry("non-integer max_iter", dynamo.NewtonRaphson, "max_iter", "ten"),
	)

	It("allows an empty derivative", func() {
		in := experiment.DefaultInputs(dynamo.NewtonRaphson)
		in["df"] = ""
		cfg, err := experiment.ParseInputs(dynamo.NewtonRaphson, in)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Newton.Derivative).To(BeEmpty())
	})
})

var _ = Describe("Experiment", func() {
	var (
		reg *experiment.Registry
		ctx context.Context
	)

	BeforeEach(func() {
		reg = experiment.NewRegistry()
		ctx = context.Background()
	})

	It("refuses to run before setup", func() {
		_, err := experiment.New(config.DefaultConfig(dynamo.RungeKutta4)).Run(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("resolves aliases in the config", func() {
		cfg := config.DefaultConfig("heun")
		exp := experiment.New(cfg)
		Expect(exp.Setup(reg)).To(Succeed())
		Expect(exp.Config().Method).To(Equal(dynamo.ImprovedEuler))
	})

	It("runs the default ODE problem and fills metrics", func() {
		exp := experiment.New(config.DefaultConfig(dynamo.RungeKutta4))
		Expect(exp.Setup(reg)).To(Succeed())

		var seen []int
		res, err := exp.Run(ctx, dynamo.ObserverFunc(func(r dynamo.Record) {
			seen = append(seen, r.Step())
		}))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusDone))
		Expect(res.Records).To(HaveLen(10))
		Expect(seen).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
		Expect(res.Metrics).To(HaveKeyWithValue("evaluations", 50.0))
		Expect(res.Metrics).To(HaveKey("max_drift"))
	})

	It("converges on the default Newton problem", func() {
		rec := metrics.NewRecorder()
		exp := experiment.New(config.DefaultConfig(dynamo.NewtonRaphson)).WithRecorder(rec)
		Expect(exp.Setup(reg)).To(Succeed())

		res, err := exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusConverged))
		Expect(res.Root).To(BeNumerically("~", 1.324718, 1e-4))
		Expect(res.Metrics).To(HaveKey("convergence_order"))

		n, err := testutil.GatherAndCount(rec.Registry(), "numeth_runs_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("uses a numeric derivative when f' is empty", func() {
		cfg := config.DefaultConfig(dynamo.NewtonRaphson)
		cfg.Newton.Derivative = ""
		exp := experiment.New(cfg)
		Expect(exp.Setup(reg)).To(Succeed())

		res, err := exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusConverged))
		Expect(res.Root).To(BeNumerically("~", 1.324718, 1e-4))
	})

	It("keeps the records before an evaluation failure", func() {
		cfg := config.DefaultConfig(dynamo.ImprovedEuler)
		cfg.ODE.Formula = "sqrt(0.25 - x)"
		exp := experiment.New(cfg)
		Expect(exp.Setup(reg)).To(Succeed())

		res, err := exp.Run(ctx)
		Expect(err).To(MatchError(dynamo.ErrEvaluation))
		Expect(res.Status).To(Equal(dynamo.StatusFailed))
		Expect(res.Records).NotTo(BeEmpty())
		Expect(res.Metrics).NotTo(BeNil())
	})

	It("is not affected by later config changes", func() {
		cfg := config.DefaultConfig(dynamo.RungeKutta4)
		exp := experiment.New(cfg)
		cfg.ODE.N = 3
		Expect(exp.Setup(reg)).To(Succeed())

		res, err := exp.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Records).To(HaveLen(10))
	})
})

var _ = Describe("Batch", func() {
	It("runs configurations concurrently and keeps their order", func() {
		cfgs := []*config.Config{
			config.GetPreset(dynamo.RungeKutta4, "growth"),
			config.DefaultConfig(dynamo.NewtonRaphson),
			config.GetPreset(dynamo.NewtonRaphson, "stationary"),
			config.GetPreset(dynamo.ImprovedEuler, "textbook"),
		}
		rec := metrics.NewRecorder()

		results, errs := experiment.NewBatch(experiment.NewRegistry(), rec).Run(context.Background(), cfgs)
		Expect(results).To(HaveLen(4))
		for _, err := range errs {
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(results[0].Method).To(Equal(dynamo.RungeKutta4))
		Expect(results[1].Status).To(Equal(dynamo.StatusConverged))
		Expect(results[2].Status).To(Equal(dynamo.StatusDerivativeVanished))
		Expect(results[3].Method).To(Equal(dynamo.ImprovedEuler))

		n, err := testutil.GatherAndCount(rec.Registry(), "numeth_runs_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(4))
	})

	It("gives the same results with a single worker", func() {
		cfgs := make([]*config.Config, 6)
		for i := range cfgs {
			cfg, err := experiment.WithField(config.DefaultConfig(dynamo.NewtonRaphson), "x0", float64(i+1))
			Expect(err).NotTo(HaveOccurred())
			cfgs[i] = cfg
		}

		reg := experiment.NewRegistry()
		serial, _ := experiment.NewBatch(reg, nil).WithWorkers(1).Run(context.Background(), cfgs)
		parallel, _ := experiment.NewBatch(reg, nil).Run(context.Background(), cfgs)
		for i := range cfgs {
			Expect(serial[i].Records).To(Equal(parallel[i].Records))
		}
	})

	It("reports setup failures per configuration", func() {
		bad := config.DefaultConfig(dynamo.RungeKutta4)
		bad.ODE.Formula = "y +"

		results, errs := experiment.NewBatch(experiment.NewRegistry(), nil).Run(context.Background(), []*config.Config{bad})
		Expect(results[0]).To(BeNil())
		Expect(errs[0]).To(MatchError(dynamo.ErrConfiguration))
	})
})

var _ = Describe("WithField", func() {
	It("replaces one numeric field and keeps the rest", func() {
		base := config.DefaultConfig(dynamo.NewtonRaphson)
		cfg, err := experiment.WithField(base, "x0", 2.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Newton.X0).To(Equal(2.5))
		Expect(cfg.Newton.Formula).To(Equal(base.Newton.Formula))
		Expect(base.Newton.X0).To(Equal(config.DefaultGuess))
	})

	It("truncates integer fields", func() {
		cfg, err := experiment.WithField(config.DefaultConfig(dynamo.RungeKutta4), "n", 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ODE.N).To(Equal(7))
	})

	It("rejects formulas and foreign fields", func() {
		_, err := experiment.WithField(config.DefaultConfig(dynamo.RungeKutta4), "f", 1)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
		_, err = experiment.WithField(config.DefaultConfig(dynamo.RungeKutta4), "tol", 1)
		Expect(err).To(MatchError(dynamo.ErrConfiguration))
	})
})
