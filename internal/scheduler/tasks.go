package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskMetricsSnapshot = "metrics.snapshot"

// MetricsSnapshotPayload computes and stores one account's setter metrics
// for one calendar day.
type MetricsSnapshotPayload struct {
	AccountID string `json:"accountId"`
	// Day is the snapshot date in YYYY-MM-DD, UTC.
	Day string `json:"day"`
}

func NewMetricsSnapshotTask(payload MetricsSnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMetricsSnapshot, data), nil
}

func ParseMetricsSnapshotPayload(task *asynq.Task) (MetricsSnapshotPayload, error) {
	var payload MetricsSnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MetricsSnapshotPayload{}, err
	}
	return payload, nil
}
