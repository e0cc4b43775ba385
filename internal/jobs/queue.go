package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const TaskItemRefresh = "item:refresh"

// Queue wraps the asynq client and worker. It is the external task runner
// behind catalog.TaskSink: RefreshAll submits one refresh unit per item,
// the worker runs them independently.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logrus.Logger
}

func NewQueue(redisAddr string, logger *logrus.Logger) *Queue {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			"default": 1,
		},
	})
	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
}

type refreshPayload struct {
	ItemID string `json:"item_id"`
}

// Submit enqueues a refresh task for one item. The deterministic task id
// keeps a bulk dispatch from queueing the same item twice; a pending
// duplicate is silently skipped.
func (q *Queue) Submit(itemID uuid.UUID) error {
	data, err := json.Marshal(refreshPayload{ItemID: itemID.String()})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(TaskItemRefresh, data, asynq.TaskID("refresh:"+itemID.String()))
	_, err = q.client.Enqueue(task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
			q.logger.WithField("item_id", itemID).Debug("refresh already queued, skipping")
			return nil
		}
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

func (q *Queue) RegisterHandler(taskType string, handler asynq.Handler) {
	q.mux.Handle(taskType, handler)
}

func (q *Queue) Start() error {
	q.logger.Info("job queue worker starting")
	return q.server.Start(q.mux)
}

func (q *Queue) Stop() {
	q.server.Shutdown()
	q.client.Close()
}
