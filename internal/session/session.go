package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/metrics"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/scoreboard"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/store"
)

// Options bounds the two timers of the arbitration state machine.
type Options struct {
	// HandshakeTimeout is how long a connection may stay unclassified.
	HandshakeTimeout time.Duration
	// GracePeriod is how long a disconnected master's token stays valid.
	GracePeriod time.Duration
}

// --- Command types ---

type sessionCmd interface{ sessionCmd() }

type cmdConnect struct {
	sink    Sink
	replyCh chan string
}

func (cmdConnect) sessionCmd() {}

type cmdFrame struct {
	clientID string
	raw      []byte
}

func (cmdFrame) sessionCmd() {}

type cmdDisconnect struct {
	clientID string
}

func (cmdDisconnect) sessionCmd() {}

type cmdHandshakeExpired struct {
	clientID string
}

func (cmdHandshakeExpired) sessionCmd() {}

type cmdGraceExpired struct {
	gen uint64
}

func (cmdGraceExpired) sessionCmd() {}

type cmdRoles struct {
	replyCh chan map[string]Role
}

func (cmdRoles) sessionCmd() {}

type cmdStop struct{}

func (cmdStop) sessionCmd() {}

// --- Session ---

// Session is the process-wide coordination context: one actor goroutine
// owns the connection registry, the role arbiter, and the state store.
// Handlers run to completion before the next command, so no locking
// protects any of the three.
type Session struct {
	cmdCh    chan sessionCmd
	clock    clockwork.Clock
	store    *store.Store
	registry *Registry
	arbiter  *Arbiter
	opts     Options
	graceGen uint64
	done     chan struct{}
}

func New(st *store.Store, clock clockwork.Clock, opts Options) *Session {
	s := &Session{
		cmdCh:    make(chan sessionCmd, 256),
		clock:    clock,
		store:    st,
		registry: NewRegistry(clock),
		arbiter:  NewArbiter(clock, opts.GracePeriod),
		opts:     opts,
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Connect registers a new connection and returns its assigned client ID.
// The connection starts as a provisional display/viewer pending handshake.
func (s *Session) Connect(sink Sink) string {
	replyCh := make(chan string, 1)
	select {
	case s.cmdCh <- cmdConnect{sink: sink, replyCh: replyCh}:
	case <-s.done:
		return ""
	}
	select {
	case id := <-replyCh:
		return id
	case <-s.done:
		return ""
	}
}

// HandleFrame submits a raw inbound frame for dispatch.
func (s *Session) HandleFrame(clientID string, raw []byte) {
	s.post(cmdFrame{clientID: clientID, raw: raw})
}

// Disconnect removes a connection; if it held the master role, the
// grace-period flow starts.
func (s *Session) Disconnect(clientID string) {
	s.post(cmdDisconnect{clientID: clientID})
}

// Roles returns a snapshot of current roles by client ID.
func (s *Session) Roles() map[string]Role {
	replyCh := make(chan map[string]Role, 1)
	select {
	case s.cmdCh <- cmdRoles{replyCh: replyCh}:
	case <-s.done:
		return nil
	}
	select {
	case roles := <-replyCh:
		return roles
	case <-s.done:
		return nil
	}
}

// Stop shuts down the actor, closing every client connection.
func (s *Session) Stop() {
	select {
	case s.cmdCh <- cmdStop{}:
	case <-s.done:
		return
	}
	<-s.done
}

func (s *Session) post(cmd sessionCmd) {
	select {
	case s.cmdCh <- cmd:
	case <-s.done:
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Session panic recovered", "panic", r)
			s.closeAll("session failure")
		}
	}()

	for cmd := range s.cmdCh {
		switch c := cmd.(type) {
		case cmdConnect:
			c.replyCh <- s.handleConnect(c.sink)
		case cmdFrame:
			s.handleFrame(c.clientID, c.raw)
		case cmdDisconnect:
			s.handleDisconnect(c.clientID)
		case cmdHandshakeExpired:
			s.handleHandshakeExpired(c.clientID)
		case cmdGraceExpired:
			s.handleGraceExpired(c.gen)
		case cmdRoles:
			roles := make(map[string]Role, s.registry.Len())
			for _, client := range s.registry.All() {
				roles[client.ID] = client.Role
			}
			c.replyCh <- roles
		case cmdStop:
			s.closeAll("Server shutting down")
			return
		default:
			slog.Warn("Session received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

// --- Handlers (single-threaded) ---

func (s *Session) handleConnect(sink Sink) string {
	client := s.registry.Register(sink)

	clientID := client.ID
	client.handshakeTimer = s.clock.AfterFunc(s.opts.HandshakeTimeout, func() {
		s.post(cmdHandshakeExpired{clientID: clientID})
	})

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectedClients.WithLabelValues(string(RoleViewer)).Inc()

	slog.Debug("Client connected", "client_id", client.ID,
		"master_client_id", s.arbiter.MasterID())
	return client.ID
}

func (s *Session) handleFrame(clientID string, raw []byte) {
	client, ok := s.registry.Get(clientID)
	if !ok {
		return
	}

	msg, err := parseInbound(raw)
	if err != nil {
		slog.Warn("Dropping malformed frame", "client_id", clientID, "error", err)
		return
	}

	switch msg.Type {
	case msgHandshake:
		s.handleHandshake(client, msg)
	case msgReleaseMaster:
		s.handleRelease(client)
	case msgGameStateUpdate:
		s.handleUpdate(client, msg.Data)
	}
}

func (s *Session) handleHandshake(client *Client, msg *inbound) {
	s.cancelHandshakeTimer(client)
	wasTimedOut := client.classified
	client.classified = true

	oldRole := client.Role

	if msg.ClientType == TypeController {
		client.Type = TypeController
		previousMasterID := s.arbiter.MasterID()
		decision := s.arbiter.DecideController(client.ID, msg.MasterToken)
		client.Role = decision.Role
		if decision.GraceReconnect {
			metrics.GraceReconnectsTotal.Inc()
		}
		if decision.Role == RoleMaster && previousMasterID != "" && previousMasterID != client.ID {
			s.demoteStaleMaster(previousMasterID)
		}

		s.setRoleGauge(oldRole, client.Role)
		client.send(roleAssignmentMsg{
			Type:           msgRoleAssignment,
			Role:           client.Role,
			ClientID:       client.ID,
			MasterClientID: s.arbiter.MasterID(),
			MasterToken:    decision.Token,
		})
	} else {
		client.Type = TypeDisplay
		client.Role = RoleViewer
		s.setRoleGauge(oldRole, client.Role)
		client.send(roleAssignmentMsg{
			Type:           msgRoleAssignment,
			Role:           client.Role,
			ClientID:       client.ID,
			MasterClientID: s.arbiter.MasterID(),
		})
	}

	s.sendCurrentState(client)

	slog.Info("Client classified", "client_id", client.ID,
		"client_type", client.Type, "role", client.Role, "was_timed_out", wasTimedOut)
}

func (s *Session) handleRelease(client *Client) {
	if client.Role != RoleMaster {
		slog.Info("Rejected release from non-master client", "client_id", client.ID)
		return
	}

	s.arbiter.Release(client.ID)
	client.Role = RoleSlave
	s.setRoleGauge(RoleMaster, RoleSlave)
	metrics.RoleChangesTotal.WithLabelValues(string(RoleSlave), reasonMasterReleased).Inc()

	// The releaser is excluded so it cannot immediately win back the role.
	s.promoteNext(reasonMasterReleased, client.ID)

	client.send(roleChangedMsg{
		Type:       msgRoleChanged,
		NewRole:    RoleSlave,
		ClearToken: true,
		Reason:     reasonMasterReleased,
	})
}

func (s *Session) handleUpdate(client *Client, data map[string]any) {
	if client.Role != RoleMaster {
		slog.Info("Rejected update from non-master client",
			"client_id", client.ID, "role", client.Role)
		metrics.StateUpdatesTotal.WithLabelValues("unauthorized").Inc()
		return
	}

	state, err := scoreboard.ValidateUpdate(data)
	if err != nil {
		slog.Warn("Rejected invalid game state", "client_id", client.ID, "error", err)
		metrics.StateUpdatesTotal.WithLabelValues("rejected").Inc()
		client.send(errorMsg{
			Type:    msgError,
			Message: "Invalid game state data",
			Error:   err.Error(),
		})
		return
	}

	s.store.Save(state)
	metrics.StateUpdatesTotal.WithLabelValues("accepted").Inc()

	s.broadcast(gameStateMsg{Type: msgGameState, Data: state}, client.ID)
	metrics.BroadcastsTotal.Inc()
}

func (s *Session) handleDisconnect(clientID string) {
	client, ok := s.registry.Remove(clientID)
	if !ok {
		return
	}
	s.cancelHandshakeTimer(client)
	metrics.ConnectedClients.WithLabelValues(string(client.Role)).Dec()

	slog.Debug("Client disconnected", "client_id", clientID,
		"client_type", client.Type, "role", client.Role)

	if client.Role != RoleMaster {
		return
	}

	s.arbiter.MasterLost(clientID)
	s.graceGen++
	gen := s.graceGen
	s.clock.AfterFunc(s.opts.GracePeriod, func() {
		s.post(cmdGraceExpired{gen: gen})
	})
}

func (s *Session) handleHandshakeExpired(clientID string) {
	client, ok := s.registry.Get(clientID)
	if !ok || client.classified {
		return
	}
	client.classified = true
	client.handshakeTimer = nil

	metrics.HandshakeTimeoutsTotal.Inc()
	slog.Info("Handshake timeout, treating as display viewer", "client_id", clientID)

	s.sendCurrentState(client)
}

func (s *Session) handleGraceExpired(gen uint64) {
	if gen != s.graceGen {
		return
	}
	if !s.arbiter.GraceExpired() {
		return
	}
	slog.Info("Grace period expired, promoting next slave")
	s.promoteNext(reasonMasterDisconnected, "")
}

// demoteStaleMaster keeps the single-master invariant when a reconnect
// presenting the current token wins the role while the previous holder's
// connection is still registered.
func (s *Session) demoteStaleMaster(clientID string) {
	stale, ok := s.registry.Get(clientID)
	if !ok || stale.Role != RoleMaster {
		return
	}
	stale.Role = RoleSlave
	s.setRoleGauge(RoleMaster, RoleSlave)
	metrics.RoleChangesTotal.WithLabelValues(string(RoleSlave), "master_reconnected").Inc()
	stale.send(roleChangedMsg{
		Type:       msgRoleChanged,
		NewRole:    RoleSlave,
		ClearToken: true,
		Reason:     "master_reconnected",
	})
	slog.Info("Demoted stale master after token reconnection", "client_id", clientID)
}

// promoteNext installs the oldest standby controller as master and hands
// it a freshly minted token.
func (s *Session) promoteNext(reason, excludeID string) bool {
	slaves := s.registry.Slaves(excludeID)
	if len(slaves) == 0 {
		slog.Info("No slaves available for promotion")
		return false
	}

	next := slaves[0]
	token := s.arbiter.Promote(next.ID)
	next.Role = RoleMaster
	s.setRoleGauge(RoleSlave, RoleMaster)
	metrics.PromotionsTotal.WithLabelValues(reason).Inc()
	metrics.RoleChangesTotal.WithLabelValues(string(RoleMaster), reason).Inc()

	next.send(roleChangedMsg{
		Type:        msgRoleChanged,
		NewRole:     RoleMaster,
		MasterToken: token,
		Reason:      reason,
	})

	slog.Info("Client promoted to master", "client_id", next.ID, "reason", reason)
	return true
}

func (s *Session) broadcast(msg any, excludeID string) {
	data := marshal(msg)
	var slow []*Client
	for _, client := range s.registry.All() {
		if client.ID == excludeID {
			continue
		}
		if !client.sink.Send(data) {
			slow = append(slow, client)
		}
	}

	for _, client := range slow {
		slog.Warn("Disconnecting slow client", "client_id", client.ID)
		metrics.SlowClientsEvicted.Inc()
		client.sink.Close("send buffer full")
		s.handleDisconnect(client.ID)
	}
}

func (s *Session) sendCurrentState(client *Client) {
	if state, ok := s.store.Current(); ok {
		client.send(gameStateMsg{Type: msgGameState, Data: state})
	}
}

func (s *Session) cancelHandshakeTimer(client *Client) {
	if client.handshakeTimer != nil {
		client.handshakeTimer.Stop()
		client.handshakeTimer = nil
	}
}

func (s *Session) setRoleGauge(oldRole, newRole Role) {
	if oldRole == newRole {
		return
	}
	metrics.ConnectedClients.WithLabelValues(string(oldRole)).Dec()
	metrics.ConnectedClients.WithLabelValues(string(newRole)).Inc()
}

func (s *Session) closeAll(reason string) {
	for _, client := range s.registry.All() {
		s.cancelHandshakeTimer(client)
		client.sink.Close(reason)
		metrics.ConnectedClients.WithLabelValues(string(client.Role)).Dec()
		s.registry.Remove(client.ID)
	}
}
