package events_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/poichain/foundation/events"
	"github.com/stretchr/testify/require"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch := evts.Acquire("a")
	require.Equal(t, ch, evts.Acquire("a"))
	require.Equal(t, 1, evts.Len())

	evts.Send("state: ProcessChain: started")
	require.Equal(t, "state: ProcessChain: started", <-ch)

	dropped, err := evts.Release("a")
	require.NoError(t, err)
	require.Zero(t, dropped)

	_, err = evts.Release("a")
	require.Error(t, err)

	_, open := <-ch
	require.False(t, open)

	ch = evts.Acquire("b")
	evts.Shutdown()
	_, open = <-ch
	require.False(t, open)
	require.Zero(t, evts.Len())
}

func Test_EventsSources(t *testing.T) {
	evts := events.New()

	worker := evts.Acquire("worker", "worker")
	chain := evts.Acquire("chain", "state", "validator")

	evts.Send("worker: harvest: started")
	evts.Send("validator: IsValid: completed: SUCCESS")
	evts.Send("state: ProcessChain: completed")

	require.Len(t, worker, 1)
	require.Equal(t, "worker: harvest: started", <-worker)

	require.Len(t, chain, 2)
	require.Equal(t, "validator: IsValid: completed: SUCCESS", <-chain)
	require.Equal(t, "state: ProcessChain: completed", <-chain)
}

func Test_EventsDropped(t *testing.T) {
	evts := events.New()
	evts.Acquire("slow")

	for i := range 105 {
		evts.Send(fmt.Sprintf("worker: tick[%d]", i))
	}

	dropped, err := evts.Release("slow")
	require.NoError(t, err)
	require.Equal(t, 5, dropped)
}

func Test_Source(t *testing.T) {
	require.Equal(t, "state", events.Source("state: ProcessChain: started"))
	require.Equal(t, "", events.Source("no source here"))
}
