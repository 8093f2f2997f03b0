package application

import (
	"testing"

	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestAccountsBroadcaster(t *testing.T) {
	b := NewAccountsBroadcaster()

	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	require.NotEqual(t, id1, id2)

	accounts := []domain.Account{{Index: 0, Name: domain.AccountName(0)}}
	b.Publish(accounts)

	got := <-ch1
	require.Equal(t, accounts, got)
	require.Equal(t, accounts, <-ch2)

	// subscribers get their own copy of the list.
	got[0].Name = "changed"
	require.Equal(t, "Account #1", accounts[0].Name)

	b.Unsubscribe(id1)
	_, ok := <-ch1
	require.False(t, ok)
	b.Unsubscribe(id1)

	// updates are dropped for subscribers not draining their queue.
	for i := 0; i < subscriberQueueSize+5; i++ {
		b.Publish(accounts)
	}
	require.Len(t, ch2, subscriberQueueSize)

	b.Close()
	for range ch2 {
	}
	_, ok = <-ch2
	require.False(t, ok)
}
