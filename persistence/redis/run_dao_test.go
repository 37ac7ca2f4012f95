package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	mr := miniredis.RunT(t)
	client := rd.NewUniversalClient(&rd.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	return NewStorageWithClient(client, "test")
}

func TestRunDaoSaveAndGet(t *testing.T) {
	storage := newTestStorage(t)

	run, err := storage.Runs.Create("fl-1", "t1", "919900001111")
	require.NoError(t, err)
	require.NotEmpty(t, run.Id)
	require.Equal(t, model.RUN_RUNNING, run.Status)
	require.NotNil(t, run.Context)

	run.Context["name"] = "Sam"
	run.CurrentNodeId = "n2"
	require.NoError(t, storage.Runs.Save(run))

	loaded, err := storage.Runs.Get("t1", run.Id)
	require.NoError(t, err)
	require.Equal(t, run.Id, loaded.Id)
	require.Equal(t, "n2", loaded.CurrentNodeId)
	require.Equal(t, "Sam", loaded.Context["name"])
}

func TestRunDaoGetNotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Runs.Get("t1", "missing")
	require.Error(t, err)
	_, ok := err.(persistence.NotFoundError)
	require.True(t, ok)
}

func TestRunDaoFindWaiting(t *testing.T) {
	storage := newTestStorage(t)

	t.Run("no waiting run", func(t *testing.T) {
		run, err := storage.Runs.FindWaiting("t1", "919900001111")
		require.NoError(t, err)
		require.Nil(t, run)
	})

	t.Run("picks most recently updated", func(t *testing.T) {
		older, err := storage.Runs.Create("fl-1", "t1", "919900002222")
		require.NoError(t, err)
		older.Status = model.RUN_WAITING
		older.WaitingNodeId = "n3"
		older.WaitingFor = model.WAIT_BUTTON_REPLY
		older.UpdatedAt = time.Now().Add(-time.Minute)
		require.NoError(t, storage.Runs.Save(older))

		newer, err := storage.Runs.Create("fl-2", "t1", "919900002222")
		require.NoError(t, err)
		newer.Status = model.RUN_WAITING
		newer.WaitingNodeId = "n5"
		newer.WaitingFor = model.WAIT_TEXT_REPLY
		newer.UpdatedAt = time.Now()
		require.NoError(t, storage.Runs.Save(newer))

		found, err := storage.Runs.FindWaiting("t1", "919900002222")
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, newer.Id, found.Id)
	})

	t.Run("expired run skipped", func(t *testing.T) {
		run, err := storage.Runs.Create("fl-1", "t1", "919900003333")
		require.NoError(t, err)
		past := time.Now().Add(-time.Minute)
		run.Status = model.RUN_WAITING
		run.WaitingNodeId = "n4"
		run.WaitingFor = model.WAIT_TEXT_REPLY
		run.ExpiresAt = &past
		require.NoError(t, storage.Runs.Save(run))

		found, err := storage.Runs.FindWaiting("t1", "919900003333")
		require.NoError(t, err)
		require.Nil(t, found)
	})

	t.Run("finished run dropped from index", func(t *testing.T) {
		run, err := storage.Runs.Create("fl-1", "t1", "919900004444")
		require.NoError(t, err)
		run.Status = model.RUN_WAITING
		run.WaitingNodeId = "n3"
		run.WaitingFor = model.WAIT_BUTTON_REPLY
		require.NoError(t, storage.Runs.Save(run))

		run.ClearWait()
		run.Status = model.RUN_FINISHED
		require.NoError(t, storage.Runs.Save(run))

		found, err := storage.Runs.FindWaiting("t1", "919900004444")
		require.NoError(t, err)
		require.Nil(t, found)
	})
}

func TestRunDaoPopExpired(t *testing.T) {
	storage := newTestStorage(t)

	expired, err := storage.Runs.Create("fl-1", "t1", "919900005555")
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	expired.Status = model.RUN_WAITING
	expired.WaitingNodeId = "n4"
	expired.WaitingFor = model.WAIT_TEXT_REPLY
	expired.ExpiresAt = &past
	require.NoError(t, storage.Runs.Save(expired))

	pending, err := storage.Runs.Create("fl-1", "t1", "919900006666")
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)
	pending.Status = model.RUN_WAITING
	pending.WaitingNodeId = "n4"
	pending.WaitingFor = model.WAIT_TEXT_REPLY
	pending.ExpiresAt = &future
	require.NoError(t, storage.Runs.Save(pending))

	runs, err := storage.Runs.PopExpired(time.Now())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, expired.Id, runs[0].Id)

	// drained, a second sweep finds nothing
	runs, err = storage.Runs.PopExpired(time.Now())
	require.NoError(t, err)
	require.Empty(t, runs)
}
