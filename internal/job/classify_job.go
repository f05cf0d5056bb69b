package job

import (
	"context"

	"github.com/xxxsen/doctriage/internal/classify"
	"github.com/xxxsen/doctriage/internal/model"
	"github.com/xxxsen/doctriage/internal/report"
)

// ClassifyJob periodically re-runs classification over documents that
// are still unassigned, picking up uploads that arrived since the last
// pass.
type ClassifyJob struct {
	resolver *classify.Resolver
	cats     []*model.Category
	state    string
	apply    bool
	reporter *report.Writer
}

func NewClassifyJob(resolver *classify.Resolver, cats []*model.Category, state string, apply bool, reporter *report.Writer) *ClassifyJob {
	return &ClassifyJob{resolver: resolver, cats: cats, state: state, apply: apply, reporter: reporter}
}

func (j *ClassifyJob) Name() string {
	return "classify_unassigned"
}

func (j *ClassifyJob) Run(ctx context.Context) error {
	summary, err := j.resolver.Run(ctx, j.cats, classify.RunOptions{
		State:  j.state,
		Status: model.StatusUnassigned,
		Apply:  j.apply,
	})
	if err != nil {
		return err
	}
	if j.reporter != nil && len(summary.Results) > 0 {
		return j.reporter.Write(ctx, j.state, summary)
	}
	return nil
}
