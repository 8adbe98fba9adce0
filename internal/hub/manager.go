package hub

import (
	"context"
	"log"
	"sync"

	"tutorchat/backend/internal/models"
)

// ManagerService tracks connected clients and routes notifications to them.
type ManagerService struct {
	clients map[string]map[Client]struct{}
	mu      sync.RWMutex

	RegisterCh   chan Client
	UnregisterCh chan Client
	DeliverCh    chan models.Notification

	// done is closed once Run has returned.
	done     chan struct{}
	doneOnce sync.Once
}

func NewManagerService() *ManagerService {
	return &ManagerService{
		clients:      make(map[string]map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		DeliverCh:    make(chan models.Notification, 256),
		done:         make(chan struct{}),
	}
}

// Run owns the client registry until ctx is cancelled.
func (m *ManagerService) Run(ctx context.Context) {
	defer m.doneOnce.Do(func() { close(m.done) })
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.RegisterCh:
			m.register(client)

		case client := <-m.UnregisterCh:
			m.unregister(client)

		case n := <-m.DeliverCh:
			m.deliver(n)
		}
	}
}

// Register hands c to Run. It returns false once the hub has shut down, in which
// case the caller still owns c.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister hands c back to Run; after shutdown every client is already closed.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Connected reports how many live clients the user has.
func (m *ManagerService) Connected(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID])
}

func (m *ManagerService) register(c Client) {
	m.mu.Lock()
	set, ok := m.clients[c.GetUserID()]
	if !ok {
		set = make(map[Client]struct{})
		m.clients[c.GetUserID()] = set
	}
	set[c] = struct{}{}
	m.mu.Unlock()

	log.Printf("INFO: notification client registered for user %s", c.GetUserID())
}

func (m *ManagerService) unregister(c Client) {
	m.mu.Lock()
	set, ok := m.clients[c.GetUserID()]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			if len(set) == 0 {
				delete(m.clients, c.GetUserID())
			}
		} else {
			ok = false
		}
	}
	m.mu.Unlock()

	if ok {
		c.Close()
	}
}

func (m *ManagerService) deliver(n models.Notification) {
	m.mu.RLock()
	targets := make([]Client, 0, len(m.clients[n.RecipientID]))
	for c := range m.clients[n.RecipientID] {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.GetSendChannel() <- n:
		default:
			// Повільний клієнт: відключаємо, щоб не блокувати хаб
			log.Printf("WARNING: dropping slow notification client of user %s", n.RecipientID)
			m.unregister(c)
		}
	}
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	all := m.clients
	m.clients = make(map[string]map[Client]struct{})
	m.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.Close()
		}
	}
}
