package job

import (
	"context"

	"github.com/xxxsen/doctriage/internal/entity"
)

// RolesJob periodically re-clusters documents and refreshes the
// developer/group role assignment.
type RolesJob struct {
	inferrer *entity.Inferrer
	apply    bool
}

func NewRolesJob(inferrer *entity.Inferrer, apply bool) *RolesJob {
	return &RolesJob{inferrer: inferrer, apply: apply}
}

func (j *RolesJob) Name() string {
	return "infer_roles"
}

func (j *RolesJob) Run(ctx context.Context) error {
	_, err := j.inferrer.Run(ctx, j.apply)
	return err
}
