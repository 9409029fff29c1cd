package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
)

// ClientType is the declared kind of a connection: "controller" drives
// the board, "display" only renders it. Unknown until handshake.
type ClientType string

const (
	TypeController ClientType = "controller"
	TypeDisplay    ClientType = "display"
)

// Role is the arbitration outcome for a connection.
type Role string

const (
	RoleMaster Role = "master"
	RoleSlave  Role = "slave"
	RoleViewer Role = "viewer"
)

// Sink is the outbound half of a connection. Send must not block: it
// returns false when the client cannot keep up and should be evicted.
type Sink interface {
	Send(data []byte) bool
	Close(reason string)
}

// Client is the registry record for one live connection. The sink is
// exclusively owned by this record; the session actor is the only writer.
type Client struct {
	ID          string
	Type        ClientType
	Role        Role
	ConnectedAt time.Time

	sink           Sink
	seq            uint64
	classified     bool
	handshakeTimer clockwork.Timer
}

func (c *Client) send(msg any) bool {
	return c.sink.Send(marshal(msg))
}

// Registry tracks every live connection. It is owned by the session
// actor and never accessed concurrently.
type Registry struct {
	clock   clockwork.Clock
	clients map[string]*Client
	counter uint64
}

func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		clock:   clock,
		clients: make(map[string]*Client),
	}
}

// Register creates a provisional record: display type, viewer role,
// unclassified until a handshake or the handshake timeout settles it.
func (r *Registry) Register(sink Sink) *Client {
	r.counter++
	client := &Client{
		ID:          fmt.Sprintf("client_%d_%d", r.counter, r.clock.Now().UnixMilli()),
		Type:        TypeDisplay,
		Role:        RoleViewer,
		ConnectedAt: r.clock.Now(),
		sink:        sink,
		seq:         r.counter,
	}
	r.clients[client.ID] = client
	return client
}

func (r *Registry) Get(id string) (*Client, bool) {
	client, ok := r.clients[id]
	return client, ok
}

// Remove deletes the record and returns it for role-specific cleanup.
func (r *Registry) Remove(id string) (*Client, bool) {
	client, ok := r.clients[id]
	if !ok {
		return nil, false
	}
	delete(r.clients, id)
	return client, true
}

// All returns every live record in registration order.
func (r *Registry) All() []*Client {
	all := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		all = append(all, client)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	return all
}

// Slaves returns standby controllers ordered oldest-first, the promotion
// order. excludeID skips a connection (the releasing master).
func (r *Registry) Slaves(excludeID string) []*Client {
	var slaves []*Client
	for _, client := range r.clients {
		if client.ID == excludeID {
			continue
		}
		if client.Type == TypeController && client.Role == RoleSlave {
			slaves = append(slaves, client)
		}
	}
	sort.Slice(slaves, func(i, j int) bool {
		if slaves[i].ConnectedAt.Equal(slaves[j].ConnectedAt) {
			return slaves[i].seq < slaves[j].seq
		}
		return slaves[i].ConnectedAt.Before(slaves[j].ConnectedAt)
	})
	return slaves
}

func (r *Registry) Len() int {
	return len(r.clients)
}
