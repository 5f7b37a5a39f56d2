package jobs

import (
	"context"
	"encoding/json"
	"log"

	"FormCraft-Backend/src/models"

	"github.com/hibiken/asynq"
)

// FileRemover deletes stored files by path.
type FileRemover interface {
	Remove(paths ...string) error
}

// Enqueuer is the part of *asynq.Client the purger needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Purger hands deleted uploads to the background worker, or removes them
// inline when no queue is configured.
type Purger struct {
	queue   Enqueuer
	remover FileRemover
}

func NewPurger(queue Enqueuer, remover FileRemover) *Purger {
	return &Purger{queue: queue, remover: remover}
}

// PurgeFiles never fails the caller: the records are already gone and a
// leftover file is only wasted disk.
func (p *Purger) PurgeFiles(ctx context.Context, files []*models.FileUpload) {
	if len(files) == 0 {
		return
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.FilePath)
	}

	if p.queue != nil {
		task, err := NewPurgeFilesTask(paths)
		if err == nil {
			if _, err = p.queue.EnqueueContext(ctx, task); err == nil {
				log.Printf("📤 Queued purge of %d file(s)", len(paths))
				return
			}
		}
		log.Println("⚠️ Failed to queue file purge, removing inline:", err)
	}

	if err := p.remover.Remove(paths...); err != nil {
		log.Println("❌ Failed to remove files:", err)
	}
}

// HandlePurgeFilesTask is the asynq handler of TypePurgeFiles.
func (p *Purger) HandlePurgeFilesTask(ctx context.Context, t *asynq.Task) error {
	var payload PurgeFilesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Println("❌ Payload decode error:", err)
		return err
	}
	if err := p.remover.Remove(payload.Paths...); err != nil {
		log.Println("❌ Failed to purge files:", err)
		return err
	}
	log.Printf("✅ Purged %d file(s)", len(payload.Paths))
	return nil
}

// NewServeMux registers every task handler.
func NewServeMux(p *Purger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePurgeFiles, p.HandlePurgeFilesTask)
	return mux
}
