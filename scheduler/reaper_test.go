package scheduler

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence/redis"
)

func TestReap(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rd.NewUniversalClient(&rd.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	storage := redis.NewStorageWithClient(client, "test")

	expired, err := storage.Runs.Create("fl-1", "t1", "919900001111")
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	expired.Status = model.RUN_WAITING
	expired.WaitingNodeId = "n2"
	expired.WaitingFor = model.WAIT_TEXT_REPLY
	expired.ExpiresAt = &past
	require.NoError(t, storage.Runs.Save(expired))

	pending, err := storage.Runs.Create("fl-1", "t1", "919900002222")
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)
	pending.Status = model.RUN_WAITING
	pending.WaitingNodeId = "n2"
	pending.WaitingFor = model.WAIT_TEXT_REPLY
	pending.ExpiresAt = &future
	require.NoError(t, storage.Runs.Save(pending))

	r := &Reaper{runs: storage.Runs}
	r.reap()

	reaped, err := storage.Runs.Get("t1", expired.Id)
	require.NoError(t, err)
	require.Equal(t, model.RUN_FAILED, reaped.Status)

	untouched, err := storage.Runs.Get("t1", pending.Id)
	require.NoError(t, err)
	require.Equal(t, model.RUN_WAITING, untouched.Status)

	// the failed run no longer answers FindWaiting
	waiting, err := storage.Runs.FindWaiting("t1", "919900001111")
	require.NoError(t, err)
	require.Nil(t, waiting)
}
