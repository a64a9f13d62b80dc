// Package transport provides the batch evaluation harness the CLI and tests
// drive the engine with. It is not a full transport loop: it owns particle
// batches, fans evaluations out over workers, and demonstrates the engine's
// concurrency contract. Shared nuclide data is read-only, every particle is
// owned by exactly one worker, and random draws depend only on (particle id,
// stream, nuclide), never on scheduling order.
package transport

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nucsim/internal/nuclide"
	"github.com/san-kum/nucsim/internal/particle"
)

// Ensemble evaluates micro cross sections for batches of particles.
type Ensemble struct {
	reg     *nuclide.Registry
	workers int
}

func NewEnsemble(reg *nuclide.Registry, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{reg: reg, workers: workers}
}

// Evaluate computes the micro cross sections of every loaded nuclide for
// every particle in the batch.
func (e *Ensemble) Evaluate(ctx context.Context, particles []*particle.Particle) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, p := range particles {
		p := p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			e.evaluateOne(p)
			return nil
		})
	}
	return g.Wait()
}

func (e *Ensemble) evaluateOne(p *particle.Particle) {
	bin := e.reg.Options().LogUnionBin(p.E())
	for i := 0; i < e.reg.Len(); i++ {
		n, _ := e.reg.Get(i)
		n.CalculateXS(p, nil, 0.0, bin)
	}
}

// Scan evaluates one nuclide's total/elastic-less cross-section columns over
// a logarithmic energy sweep at a fixed temperature, for plotting and
// inspection. The scratch particle uses history id 0.
func Scan(n *nuclide.Nuclide, opts *nuclide.Options, eMin, eMax float64, points int, temperature float64, seed uint64) (energies, total, absorption, fission []float64) {
	energies = make([]float64, points)
	total = make([]float64, points)
	absorption = make([]float64, points)
	fission = make([]float64, points)

	p := particle.New(0, seed, n.Index()+1, len(opts.DepletionRx))
	p.SetSqrtKT(math.Sqrt(nuclide.KBoltzmann * temperature))

	step := math.Log(eMax/eMin) / float64(points-1)
	for i := 0; i < points; i++ {
		e := eMin * math.Exp(float64(i)*step)
		energies[i] = e
		p.SetE(e)
		n.CalculateXS(p, nil, 0.0, opts.LogUnionBin(e))
		micro := p.MicroXS(n.Index())
		total[i] = micro.Total
		absorption[i] = micro.Absorption
		fission[i] = micro.Fission
	}
	return energies, total, absorption, fission
}
