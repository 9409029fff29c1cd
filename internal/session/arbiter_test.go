package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArbiter() (*Arbiter, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewArbiter(clock, testGracePeriod), clock
}

func TestArbiter_FirstControllerWins(t *testing.T) {
	a, _ := newTestArbiter()

	d := a.DecideController("c1", "")
	assert.Equal(t, RoleMaster, d.Role)
	assert.NotEmpty(t, d.Token)
	assert.Equal(t, "c1", a.MasterID())
}

func TestArbiter_SecondTokenlessControllerIsSlave(t *testing.T) {
	a, _ := newTestArbiter()

	a.DecideController("c1", "")
	d := a.DecideController("c2", "")
	assert.Equal(t, RoleSlave, d.Role)
	assert.Empty(t, d.Token)
	assert.Equal(t, "c1", a.MasterID())
}

func TestArbiter_CurrentTokenReaffirmsMaster(t *testing.T) {
	a, _ := newTestArbiter()

	first := a.DecideController("c1", "")
	d := a.DecideController("c2", first.Token)

	assert.Equal(t, RoleMaster, d.Role)
	assert.Equal(t, first.Token, d.Token, "current token is reused, not reminted")
	assert.Equal(t, "c2", a.MasterID())
}

func TestArbiter_TokenlessReaffirmBySittingMaster(t *testing.T) {
	a, _ := newTestArbiter()

	first := a.DecideController("c1", "")
	d := a.DecideController("c1", "")

	assert.Equal(t, RoleMaster, d.Role)
	assert.Equal(t, first.Token, d.Token)
}

func TestArbiter_InvalidTokenIsSlave(t *testing.T) {
	a, _ := newTestArbiter()

	a.DecideController("c1", "")
	d := a.DecideController("c2", "master_12345_bogus")
	assert.Equal(t, RoleSlave, d.Role)
	assert.Empty(t, d.Token)
}

func TestArbiter_GraceTokenRestoresMaster(t *testing.T) {
	a, clock := newTestArbiter()

	first := a.DecideController("c1", "")
	a.MasterLost("c1")
	assert.Empty(t, a.MasterID())

	clock.Advance(testGracePeriod - time.Second)
	d := a.DecideController("c2", first.Token)

	assert.Equal(t, RoleMaster, d.Role)
	assert.Equal(t, first.Token, d.Token)
	assert.True(t, d.GraceReconnect)
	assert.False(t, a.GraceExpired(), "resolved grace must not trigger promotion")
}

func TestArbiter_GraceTokenRejectedAfterExpiry(t *testing.T) {
	a, clock := newTestArbiter()

	first := a.DecideController("c1", "")
	a.MasterLost("c1")

	clock.Advance(testGracePeriod + time.Millisecond)
	d := a.DecideController("c2", first.Token)

	assert.Equal(t, RoleSlave, d.Role)
	assert.False(t, d.GraceReconnect)
}

func TestArbiter_ReleaseKillsTokenImmediately(t *testing.T) {
	a, _ := newTestArbiter()

	first := a.DecideController("c1", "")
	a.Release("c1")

	// The released token gets no grace period.
	d := a.DecideController("c2", first.Token)
	assert.Equal(t, RoleSlave, d.Role)
	assert.Empty(t, a.MasterID())
}

func TestArbiter_ReleaseFromNonMasterIgnored(t *testing.T) {
	a, _ := newTestArbiter()

	a.DecideController("c1", "")
	a.Release("c2")
	assert.Equal(t, "c1", a.MasterID())
}

func TestArbiter_FreshClaimSupersedesGrace(t *testing.T) {
	a, _ := newTestArbiter()

	first := a.DecideController("c1", "")
	a.MasterLost("c1")

	// Tokenless claim during the grace window wins the vacant role.
	d := a.DecideController("c2", "")
	require.Equal(t, RoleMaster, d.Role)
	assert.NotEqual(t, first.Token, d.Token)

	// The parked token is gone with it.
	late := a.DecideController("c3", first.Token)
	assert.Equal(t, RoleSlave, late.Role)
}

func TestArbiter_GraceExpiredOnlyOnce(t *testing.T) {
	a, clock := newTestArbiter()

	a.DecideController("c1", "")
	a.MasterLost("c1")
	clock.Advance(testGracePeriod + time.Millisecond)

	assert.True(t, a.GraceExpired())
	assert.False(t, a.GraceExpired(), "second check must not promote again")
}

func TestArbiter_PromoteMintsFreshToken(t *testing.T) {
	a, clock := newTestArbiter()

	first := a.DecideController("c1", "")
	a.MasterLost("c1")
	clock.Advance(testGracePeriod + time.Millisecond)
	require.True(t, a.GraceExpired())

	token := a.Promote("c2")
	assert.NotEmpty(t, token)
	assert.NotEqual(t, first.Token, token)
	assert.Equal(t, "c2", a.MasterID())

	// The old token stays dead.
	d := a.DecideController("c3", first.Token)
	assert.Equal(t, RoleSlave, d.Role)
}

func TestArbiter_TokensAreUnique(t *testing.T) {
	a, _ := newTestArbiter()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token := a.mintToken()
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
