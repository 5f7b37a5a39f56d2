package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"FormCraft-Backend/src/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type recordingRemover struct {
	paths []string
	err   error
}

func (r *recordingRemover) Remove(paths ...string) error {
	r.paths = append(r.paths, paths...)
	return r.err
}

func uploads(paths ...string) []*models.FileUpload {
	out := make([]*models.FileUpload, len(paths))
	for i, p := range paths {
		out[i] = &models.FileUpload{FilePath: p}
	}
	return out
}

func TestPurgeFiles_Enqueues(t *testing.T) {
	q := &mockQueue{}
	q.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var p PurgeFilesPayload
		return task.Type() == TypePurgeFiles &&
			json.Unmarshal(task.Payload(), &p) == nil &&
			len(p.Paths) == 2
	})).Return(&asynq.TaskInfo{}, nil).Once()
	rm := &recordingRemover{}

	NewPurger(q, rm).PurgeFiles(context.Background(), uploads("a", "b"))

	q.AssertExpectations(t)
	assert.Empty(t, rm.paths)
}

func TestPurgeFiles_FallsBackInline(t *testing.T) {
	q := &mockQueue{}
	q.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
	rm := &recordingRemover{}

	NewPurger(q, rm).PurgeFiles(context.Background(), uploads("a"))
	assert.Equal(t, []string{"a"}, rm.paths)

	rm = &recordingRemover{}
	NewPurger(nil, rm).PurgeFiles(context.Background(), uploads("b", "c"))
	assert.Equal(t, []string{"b", "c"}, rm.paths)
}

func TestPurgeFiles_NothingToDo(t *testing.T) {
	rm := &recordingRemover{}
	NewPurger(nil, rm).PurgeFiles(context.Background(), nil)
	assert.Empty(t, rm.paths)
}

func TestHandlePurgeFilesTask(t *testing.T) {
	rm := &recordingRemover{}
	p := NewPurger(nil, rm)

	task, err := NewPurgeFilesTask([]string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, p.HandlePurgeFilesTask(context.Background(), task))
	assert.Equal(t, []string{"x", "y"}, rm.paths)

	bad := asynq.NewTask(TypePurgeFiles, []byte("{"))
	assert.Error(t, p.HandlePurgeFilesTask(context.Background(), bad))

	rm.err = errors.New("disk on fire")
	assert.Error(t, p.HandlePurgeFilesTask(context.Background(), task))
}
