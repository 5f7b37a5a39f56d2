package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TypePurgeFiles removes stored uploads whose records were deleted.
const TypePurgeFiles = "files:purge"

type PurgeFilesPayload struct {
	Paths []string `json:"paths"`
}

func NewPurgeFilesTask(paths []string) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgeFilesPayload{Paths: paths})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePurgeFiles, payload, asynq.MaxRetry(5)), nil
}
