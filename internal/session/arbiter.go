package session

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// graceToken parks the just-lost master's token for a bounded window so a
// reload can reclaim the role before a standby is promoted.
type graceToken struct {
	token     string
	expiresAt time.Time
}

// Arbiter decides controller roles. At most one valid token exists at a
// time, plus optionally one grace-period token. The token is a
// same-origin reconnection capability, not a cryptographic credential;
// it never crosses a trust boundary beyond the local network.
type Arbiter struct {
	clock       clockwork.Clock
	gracePeriod time.Duration

	masterID string
	token    string
	grace    *graceToken
}

func NewArbiter(clock clockwork.Clock, gracePeriod time.Duration) *Arbiter {
	return &Arbiter{clock: clock, gracePeriod: gracePeriod}
}

// Decision is the outcome of a controller handshake.
type Decision struct {
	Role Role
	// Token is set only when the role is master.
	Token string
	// GraceReconnect is true when a grace-period token restored the
	// master; any pending promotion must be abandoned.
	GraceReconnect bool
}

// DecideController classifies a controller handshake into exactly one of
// the five arbitration cases. It never blocks and never fails.
func (a *Arbiter) DecideController(clientID, providedToken string) Decision {
	validToken := providedToken != "" && a.token != "" && providedToken == a.token
	validGrace := providedToken != "" && a.grace != nil &&
		providedToken == a.grace.token && a.clock.Now().Before(a.grace.expiresAt)

	switch {
	case validToken:
		// Idempotent reconnection with the current token.
		a.masterID = clientID
		slog.Info("Controller verified as master (valid token)", "client_id", clientID)
		return Decision{Role: RoleMaster, Token: a.token}

	case validGrace:
		// Reload scenario: the previous master came back in time.
		a.masterID = clientID
		a.token = providedToken
		a.grace = nil
		slog.Info("Controller restored as master (grace period token)", "client_id", clientID)
		return Decision{Role: RoleMaster, Token: a.token, GraceReconnect: true}

	case providedToken != "":
		// Stale or forged token. Do not reveal which.
		slog.Info("Controller provided invalid token, assigning as slave", "client_id", clientID)
		return Decision{Role: RoleSlave}

	case a.masterID == clientID:
		// Duplicate tokenless handshake from the sitting master.
		slog.Info("Controller re-affirmed as master", "client_id", clientID)
		return Decision{Role: RoleMaster, Token: a.token}

	case a.masterID == "":
		// No master holds the role: first controller in wins.
		// A fresh claim supersedes any outstanding grace token, keeping
		// the single-master invariant.
		a.masterID = clientID
		a.token = a.mintToken()
		a.grace = nil
		slog.Info("Controller assigned as master (no existing master)", "client_id", clientID)
		return Decision{Role: RoleMaster, Token: a.token}

	default:
		slog.Info("Controller assigned as slave (master exists)",
			"client_id", clientID, "master_client_id", a.masterID)
		return Decision{Role: RoleSlave}
	}
}

// Release handles a master voluntarily stepping down. The token dies
// immediately: no grace period, the next master gets a fresh one.
func (a *Arbiter) Release(clientID string) {
	if a.masterID != clientID {
		return
	}
	a.masterID = ""
	a.token = ""
	slog.Info("Master released control, token invalidated", "client_id", clientID)
}

// MasterLost handles a transport-level disconnect of the current master.
// The token is parked as a grace token; the caller schedules promotion
// for when the window elapses.
func (a *Arbiter) MasterLost(clientID string) {
	if a.masterID != clientID {
		return
	}
	a.grace = &graceToken{
		token:     a.token,
		expiresAt: a.clock.Now().Add(a.gracePeriod),
	}
	a.masterID = ""
	a.token = ""
	slog.Info("Master disconnected, grace period started",
		"client_id", clientID, "grace_period", a.gracePeriod)
}

// GraceExpired reports whether a pending grace window should now trigger
// promotion. Returns false when the window was already resolved: a
// reconnect reclaimed the role or a new master was crowned meanwhile.
func (a *Arbiter) GraceExpired() bool {
	if a.masterID != "" || a.grace == nil {
		return false
	}
	a.grace = nil
	return true
}

// Promote installs a standby as the new master and mints its token.
func (a *Arbiter) Promote(clientID string) string {
	a.masterID = clientID
	a.token = a.mintToken()
	slog.Info("Generated new master token for promotion", "client_id", clientID)
	return a.token
}

// MasterID returns the connection currently holding the master role, or
// empty when none does.
func (a *Arbiter) MasterID() string {
	return a.masterID
}

// mintToken generates an opaque master token: mint timestamp plus a
// random fragment. Clients store and replay it verbatim, so the shape
// stays stable across releases.
func (a *Arbiter) mintToken() string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("master_%d_%s", a.clock.Now().UnixMilli(), fragment)
}
