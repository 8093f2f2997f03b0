package application

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kspr-network/kspr-daemon/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const subscriberQueueSize = 10

// AccountsBroadcaster notifies every subscriber with the updated list of
// accounts.
type AccountsBroadcaster struct {
	lock        *sync.RWMutex
	subscribers map[string]chan []domain.Account
}

func NewAccountsBroadcaster() *AccountsBroadcaster {
	return &AccountsBroadcaster{
		lock:        &sync.RWMutex{},
		subscribers: make(map[string]chan []domain.Account),
	}
}

// Subscribe returns the id of the new subscriber and the channel where the
// updates are published.
func (b *AccountsBroadcaster) Subscribe() (string, <-chan []domain.Account) {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := uuid.New().String()
	ch := make(chan []domain.Account, subscriberQueueSize)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *AccountsBroadcaster) Unsubscribe(id string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish sends accounts to every subscriber. Slow subscribers whose queue
// is full miss the update.
func (b *AccountsBroadcaster) Publish(accounts []domain.Account) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	for id, ch := range b.subscribers {
		snapshot := make([]domain.Account, len(accounts))
		copy(snapshot, accounts)

		select {
		case ch <- snapshot:
		default:
			log.Debugf("pubsub: dropped accounts update for subscriber %s", id)
		}
	}
}

// Close unsubscribes every subscriber.
func (b *AccountsBroadcaster) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
