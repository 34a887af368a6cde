package worker

import (
	"context"
	"fmt"

	"github.com/xenn00/campus-chat/internal/queue"
	worker_handler "github.com/xenn00/campus-chat/internal/worker/worker-handler"
)

func HandleJob(ctx context.Context, job queue.Job, handler *worker_handler.WorkerHandler) error {
	switch job.Type {
	case queue.JobTypeRoomActivity:
		return handler.HandleRoomActivity(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
