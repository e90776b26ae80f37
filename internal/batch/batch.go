// Package batch evaluates many candidates against one configuration state.
package batch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/assessment"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/companyfit"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/intake"
)

const DefaultWorkers = 4

// StateSource hands out the configuration state. *config.Store satisfies it.
type StateSource interface {
	Current() *config.State
}

// Item is the outcome for one candidate file. Err is set when the file could
// not be loaded or evaluated.
type Item struct {
	Path       string             `json:"path"`
	Candidate  *intake.Candidate  `json:"-"`
	Tenant     string             `json:"tenant,omitempty"`
	Report     assessment.Report  `json:"report"`
	CompanyFit *companyfit.Result `json:"company_fit,omitempty"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

// Decision returns the decision, the assessment status or "error".
func (it Item) Decision() string {
	if it.Err != nil {
		return "error"
	}
	return it.Report.Decision()
}

// Summary counts outcomes by decision.
type Summary struct {
	Total    int            `json:"total"`
	Counts   map[string]int `json:"counts"`
	Errors   int            `json:"errors"`
	Duration time.Duration  `json:"duration"`
}

// Outcomes returns the counted decisions in sorted order.
func (s Summary) Outcomes() []string {
	keys := make([]string, 0, len(s.Counts))
	for k := range s.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run is a finished batch. Items keep the order of the input paths.
type Run struct {
	ID        string    `json:"id"`
	Snapshot  string    `json:"snapshot"`
	StartedAt time.Time `json:"started_at"`
	Items     []Item    `json:"items"`
	Summary   Summary   `json:"summary"`
}

// Runner evaluates candidate files with a bounded number of workers.
type Runner struct {
	states   StateSource
	assessor *assessment.Assessor
	workers  int
	logger   *zap.Logger
	now      func() time.Time
}

func NewRunner(states StateSource, assessor *assessment.Assessor, workers int, log *zap.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	if assessor == nil {
		assessor = assessment.New(nil, log)
	}
	return &Runner{
		states:   states,
		assessor: assessor,
		workers:  workers,
		logger:   log,
		now:      time.Now,
	}
}

// Run evaluates every path. The state is read once so the whole batch sees a
// single snapshot even if the config is reloaded meanwhile. Failures of
// single files are recorded on their items; only cancellation fails the run.
func (r *Runner) Run(ctx context.Context, paths []string) (*Run, error) {
	state := r.states.Current()
	started := r.now()

	run := &Run{
		ID:        uuid.NewString(),
		Snapshot:  state.Snapshot.Version(),
		StartedAt: started,
		Items:     make([]Item, len(paths)),
	}
	log := r.logger.With(zap.String("run_id", run.ID), zap.String("snapshot", run.Snapshot))
	log.Info("batch started", zap.Int("candidates", len(paths)), zap.Int("workers", r.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run.Items[i] = r.evaluate(gctx, state, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.Summary = summarize(run.Items)
	run.Summary.Duration = r.now().Sub(started)

	log.Info("batch finished",
		zap.Int("total", run.Summary.Total),
		zap.Int("errors", run.Summary.Errors),
		zap.Any("counts", run.Summary.Counts),
		zap.Duration("duration", run.Summary.Duration),
	)
	return run, nil
}

func (r *Runner) evaluate(ctx context.Context, state *config.State, path string) Item {
	item := Item{Path: path}

	candidate, err := intake.Load(path)
	if err != nil {
		r.logger.Warn("skipping candidate file", zap.String("path", path), zap.Error(err))
		return item.failed(err)
	}
	item.Candidate = candidate
	item.Tenant = candidate.Tenant

	report, err := r.assessor.Assess(ctx, state.Snapshot, candidate.Input())
	if err != nil {
		return item.failed(err)
	}
	item.Report = report

	if candidate.Tenant != "" && report.Evaluation != nil {
		if model, ok := state.Tenant(candidate.Tenant); ok {
			fit := model.Score(report.Evaluation.Scores)
			item.CompanyFit = &fit
		} else {
			r.logger.Warn("unknown tenant", zap.String("path", path), zap.String("tenant", candidate.Tenant))
		}
	}

	return item
}

func (it Item) failed(err error) Item {
	it.Err = err
	it.Error = err.Error()
	return it
}

func summarize(items []Item) Summary {
	s := Summary{Total: len(items), Counts: map[string]int{}}
	for _, it := range items {
		if it.Err != nil {
			s.Errors++
		}
		s.Counts[it.Decision()]++
	}
	return s
}
