package roots_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numeth/internal/dynamo"
	"github.com/san-kum/numeth/internal/expr"
	"github.com/san-kum/numeth/internal/roots"
)

func fn(formula string) dynamo.Func {
	e, err := expr.Parse(formula, "x")
	Expect(err).NotTo(HaveOccurred())
	return e.Func1("x")
}

func newtonRecords(res *dynamo.Result) []dynamo.NewtonRecord {
	out := make([]dynamo.NewtonRecord, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.(dynamo.NewtonRecord)
	}
	return out
}

var _ = Describe("Newton", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("on x^3 - x - 1 from x0 = 1", func() {
		var (
			res *dynamo.Result
			err error
		)

		BeforeEach(func() {
			p := dynamo.NewtonParams{X0: 1, Tolerance: 1e-4, MaxIterations: 20, Formula: "x**3 - x - 1", Derivative: "3*x**2 - 1"}
			res, err = roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)
		})

		It("converges to the real root", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(dynamo.StatusConverged))
			Expect(res.Root).To(BeNumerically("~", 1.324718, 1e-4))
			Expect(len(res.Records)).To(BeNumerically("<", 10))
		})

		It("records |x_{i+1} - x_i| and chains estimates", func() {
			recs := newtonRecords(res)
			Expect(recs[0].X).To(Equal(1.0))
			Expect(recs[0].FX).To(Equal(-1.0))
			Expect(recs[0].FPrime).To(Equal(2.0))
			Expect(recs[0].Next).To(Equal(1.5))
			for i, r := range recs {
				Expect(r.Index).To(Equal(i))
				Expect(r.Error).To(Equal(math.Abs(r.Next - r.X)))
				if i > 0 {
					Expect(r.X).To(Equal(recs[i-1].Next))
				}
			}
			last := recs[len(recs)-1]
			Expect(last.Error).To(BeNumerically("<", 1e-4))
			Expect(res.Root).To(Equal(last.Next))
		})

		It("is deterministic", func() {
			p := dynamo.NewtonParams{X0: 1, Tolerance: 1e-4, MaxIterations: 20, Formula: "x**3 - x - 1", Derivative: "3*x**2 - 1"}
			again, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Records).To(Equal(res.Records))
		})
	})

	It("reports a vanished derivative without dividing by zero", func() {
		p := dynamo.NewtonParams{X0: 0, Tolerance: 1e-6, MaxIterations: 10, Formula: "x**2", Derivative: "2*x"}
		res, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusDerivativeVanished))
		Expect(res.Records).To(BeEmpty())
		Expect(res.X).To(Equal(0.0))
	})

	It("stops at the iteration limit on a 2-cycle", func() {
		// From x0 = 0 the iteration alternates 0, 1, 0, 1, ...
		p := dynamo.NewtonParams{X0: 0, Tolerance: 1e-6, MaxIterations: 5, Formula: "x**3 - 2*x + 2", Derivative: "3*x**2 - 2"}
		res, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusMaxIterations))
		Expect(res.Records).To(HaveLen(5))
		Expect(res.Root).To(BeZero())
		for _, r := range newtonRecords(res) {
			Expect(r.Error).To(BeNumerically("~", 1.0, 1e-12))
		}
	})

	It("converges with a numeric derivative", func() {
		p := dynamo.NewtonParams{X0: 1, Tolerance: 1e-8, MaxIterations: 20, Formula: "x**3 - x - 1"}
		f := fn(p.Formula)
		res, err := roots.NewNewton(f, expr.NumericDerivative(f), p).Run(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusConverged))
		Expect(res.Root).To(BeNumerically("~", 1.3247179572, 1e-7))
	})

	It("aborts with the failing iteration when f cannot be evaluated", func() {
		p := dynamo.NewtonParams{X0: -1, Tolerance: 1e-6, MaxIterations: 10, Formula: "log(x)", Derivative: "1/x"}
		res, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)

		Expect(err).To(MatchError(dynamo.ErrEvaluation))
		var stepErr *dynamo.StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Index).To(Equal(0))
		Expect(err).To(MatchError(expr.ErrDomain))
		Expect(res.Status).To(Equal(dynamo.StatusFailed))
		Expect(res.Records).To(BeEmpty())
	})

	It("fails with the formula when the next estimate overflows", func() {
		p := dynamo.NewtonParams{X0: 0, Tolerance: 1e-6, MaxIterations: 10, Formula: "1e308", Derivative: "1e-9"}
		res, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(ctx)

		Expect(err).To(MatchError(dynamo.ErrEvaluation))
		Expect(err).To(MatchError(expr.ErrNonFinite))
		var evalErr *expr.EvalError
		Expect(errors.As(err, &evalErr)).To(BeTrue())
		Expect(evalErr.Formula).To(Equal("1e308"))
		Expect(evalErr.Bindings).To(HaveKeyWithValue("x", 0.0))
		Expect(res.Status).To(Equal(dynamo.StatusFailed))
		Expect(res.Records).To(BeEmpty())
	})

	It("stops between iterations when the context is canceled", func() {
		cctx, cancel := context.WithCancel(ctx)
		p := dynamo.NewtonParams{X0: 0, Tolerance: 1e-6, MaxIterations: 50, Formula: "x**3 - 2*x + 2", Derivative: "3*x**2 - 2"}
		obs := dynamo.ObserverFunc(func(r dynamo.Record) {
			if r.Step() == 1 {
				cancel()
			}
		})

		res, err := roots.NewNewton(fn(p.Formula), fn(p.Derivative), p).Run(cctx, obs)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Status).To(Equal(dynamo.StatusCanceled))
		Expect(res.Records).To(HaveLen(2))
	})

	It("exposes a single step", func() {
		n := roots.NewNewton(fn("x**2 - 4"), fn("2*x"), dynamo.NewtonParams{})
		rec, vanished, err := n.Iterate(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(vanished).To(BeFalse())
		Expect(rec.Next).To(BeNumerically("~", 3-5.0/6.0, 1e-15))
	})
})
