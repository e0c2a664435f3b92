package pipeline

import (
	"context"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"time"
)

// Runner executes a Graph stage by stage.
type Runner struct {
	Log *zap.Logger
}

// Run executes every stage in order. The first failing task cancels the
// rest of its stage and is returned as a *TaskError; later stages never start.
func (r Runner) Run(ctx context.Context, g *Graph) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	for i, stage := range g.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("stage", zap.Int("depth", i), zap.Strings("tasks", stage))

		eg, sctx := errgroup.WithContext(ctx)
		for _, name := range stage {
			t := g.tasks[name]
			eg.Go(func() error {
				start := time.Now()
				if err := t.Run(sctx); err != nil {
					return &TaskError{Task: t.Name, Err: err}
				}
				log.Info("finished", zap.String("task", t.Name), zap.Duration("took", time.Since(start)))
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Run is Runner{}.Run with a logger.
func Run(ctx context.Context, g *Graph, log *zap.Logger) error {
	return Runner{Log: log}.Run(ctx, g)
}
