package l2cap

import (
	"testing"

	"github.com/rigado/bthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var peer3 = bthost.MustParseBDAddr("01:02:03:04:05:06")

func TestLCBPool(t *testing.T) {
	e := newEnv(t, func(o *Options) { o.Links = 2 })

	a := e.l.allocateLCB(peer, bthost.TransportBREDR)
	b := e.l.allocateLCB(peer, bthost.TransportLE)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.trace, b.trace)
	assert.Nil(t, e.l.allocateLCB(peer2, bthost.TransportBREDR), "pool exhausted")

	assert.Same(t, a, e.l.findLCBByAddr(peer, bthost.TransportBREDR))
	assert.Same(t, b, e.l.findLCBByAddr(peer, bthost.TransportLE))

	e.l.releaseLCB(a)
	e.l.releaseLCB(a)
	assert.Equal(t, []bthost.BDAddr{peer}, e.links.removed, "release is idempotent")
	assert.Nil(t, e.l.findLCBByAddr(peer, bthost.TransportBREDR))

	c := e.l.allocateLCB(peer2, bthost.TransportBREDR)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.idx, "first free slot")
	assert.Equal(t, DefaultOptions().IdleTimeoutBREDR, c.idleTimeout)
	assert.Equal(t, DefaultOptions().IdleTimeoutLE, b.idleTimeout)
}

func TestLinkUpWithoutFreeLCB(t *testing.T) {
	e := newEnv(t, func(o *Options) { o.Links = 1 })
	e.linkUp(t, peer, handle, bthost.TransportBREDR, bthost.RoleMaster)

	e.l.LinkUp(bthost.LinkInfo{Addr: peer2, Handle: handle + 1, Transport: bthost.TransportBREDR})
	d := e.ctrl.disconnects()
	require.Len(t, d, 1)
	assert.Equal(t, handle+1, d[0].ConnectionHandle)
	assert.Equal(t, uint8(hciNoResources), d[0].Reason)
}

func TestIncomingLinkAdmission(t *testing.T) {
	e := newEnv(t, func(o *Options) { o.Links = 1 })
	require.True(t, e.l.ConnectRequest(peer))
	require.True(t, e.l.ConnectRequest(peer), "repeat while connecting")
	assert.False(t, e.l.ConnectRequest(peer2), "pool exhausted")

	lk := e.linkUp(t, peer, handle, bthost.TransportBREDR, bthost.RoleSlave)
	assert.Equal(t, LinkConnected, lk.state)
	assert.False(t, e.l.ConnectRequest(peer), "already connected")
	assert.Empty(t, e.ctrl.disconnects())
}

func TestIncomingLinkTimesOut(t *testing.T) {
	e := newEnv(t)
	require.True(t, e.l.ConnectRequest(peer))
	e.clock.Advance(linkConnectTimeout)
	assert.Nil(t, e.l.findLCBByAddr(peer, bthost.TransportBREDR))
	assert.True(t, e.l.ConnectRequest(peer2))
}

func TestCCBPool(t *testing.T) {
	e := newEnv(t, func(o *Options) { o.Channels = 4 })
	lk := e.l.allocateLCB(peer, bthost.TransportBREDR)

	var ccbs []*ccb
	seen := map[uint16]bool{}
	for i := 0; i < 4; i++ {
		c := e.l.allocateCCB(lk, 0)
		require.NotNil(t, c)
		assert.False(t, seen[c.localCID], "cid 0x%04X reused", c.localCID)
		seen[c.localCID] = true
		assert.Equal(t, FirstDynamicCID+uint16(c.idx), c.localCID)
		assert.Equal(t, PriorityLow, c.priority)
		assert.Equal(t, chnlQuotaPerRate*2, c.buffQuota)
		assert.Equal(t, ChanClosed, c.state)
		ccbs = append(ccbs, c)
	}
	assert.Nil(t, e.l.allocateCCB(lk, 0), "pool exhausted")
	assert.Len(t, lk.ccbs, 4)

	e.l.releaseCCB(ccbs[1])
	e.l.releaseCCB(ccbs[1])
	assert.Len(t, e.l.freeCCB, 1, "release is idempotent")
	assert.Len(t, lk.ccbs, 3)

	c := e.l.allocateCCB(lk, 0)
	assert.Equal(t, uint16(0x0041), c.localCID)

	e.l.releaseCCB(ccbs[2])
	e.l.releaseCCB(ccbs[3])
	c = e.l.allocateCCB(lk, 0x0043)
	require.NotNil(t, c)
	assert.Equal(t, uint16(0x0043), c.localCID)
	assert.Nil(t, e.l.allocateCCB(lk, 0x0043), "cid in use")

	att := e.l.allocateCCB(lk, CIDATT)
	require.NotNil(t, att)
	assert.True(t, att.fixed)
	assert.Same(t, att, lk.fixed[CIDATT])
	assert.Len(t, lk.ccbs, 3, "fixed channels are not queued")
}

func TestReleaseLCBReleasesChannels(t *testing.T) {
	e := newEnv(t)
	lk := e.linkUp(t, peer, handle, bthost.TransportBREDR, bthost.RoleMaster)
	free := len(e.l.freeCCB)
	e.l.allocateCCB(lk, 0)
	e.l.allocateCCB(lk, 0)
	e.l.allocateCCB(lk, CIDConnectionless)

	e.l.releaseLCB(lk)
	assert.Len(t, e.l.freeCCB, free)
	assert.Empty(t, lk.ccbs)
	assert.Nil(t, lk.fixed[CIDConnectionless])
	assert.Equal(t, []uint16{handle}, e.ctrl.dropped)
	p := e.l.poolFor(bthost.TransportBREDR)
	assert.Equal(t, p.bufs, p.window, "unacked packets return to the window")
}

func TestChannelQueueOrder(t *testing.T) {
	e := newEnv(t)
	lk := e.l.allocateLCB(peer, bthost.TransportBREDR)
	lo := e.l.allocateCCB(lk, 0)
	hi := e.l.allocateCCB(lk, 0)
	med := e.l.allocateCCB(lk, 0)
	lo2 := e.l.allocateCCB(lk, 0)

	require.NoError(t, e.l.SetChannelPriority(hi.localCID, PriorityHigh))
	require.NoError(t, e.l.SetChannelPriority(med.localCID, PriorityMedium))
	assert.Equal(t, []*ccb{hi, med, lo, lo2}, lk.ccbs)
	assert.Equal(t, 1, lk.rr[PriorityHigh].numCCB)
	assert.Equal(t, 2, lk.rr[PriorityLow].numCCB)
	assert.Same(t, lo, lk.rr[PriorityLow].first)

	e.l.releaseCCB(lo)
	assert.Same(t, lo2, lk.rr[PriorityLow].first)
	assert.Same(t, lo2, lk.rr[PriorityLow].serve)

	assert.Error(t, e.l.SetChannelPriority(hi.localCID, Priority(7)))
	assert.Error(t, e.l.SetChannelPriority(0x0070, PriorityHigh))
}

func TestRoundRobinBands(t *testing.T) {
	e := newEnv(t)
	lk := e.l.allocateLCB(peer, bthost.TransportBREDR)
	c1 := e.l.allocateCCB(lk, 0)
	c2 := e.l.allocateCCB(lk, 0)
	c3 := e.l.allocateCCB(lk, 0)
	require.NoError(t, e.l.SetChannelPriority(c3.localCID, PriorityHigh))
	for _, c := range []*ccb{c1, c2, c3} {
		c.state = ChanOpen
		c.txq = [][]byte{{0}}
	}

	var got []*ccb
	for i := 0; i < 6; i++ {
		got = append(got, lk.nextChannelInRR())
	}
	assert.Equal(t, []*ccb{c3, c3, c1, c3, c3, c2}, got, "high band twice per low pick, low band rotates")

	c3.txq = nil
	c2.state = ChanConfig
	assert.Same(t, c1, lk.nextChannelInRR())
	assert.Same(t, c1, lk.nextChannelInRR())
	c1.txq = nil
	assert.Nil(t, lk.nextChannelInRR())
}

func TestAdjustAllocation(t *testing.T) {
	e := newEnv(t)
	e.ctrl.bufs = 8
	e.l.SetBuffers()

	a := e.l.allocateLCB(peer, bthost.TransportBREDR)
	b := e.l.allocateLCB(peer2, bthost.TransportBREDR)
	assert.Equal(t, 4, a.quota)
	assert.Equal(t, 4, b.quota)

	require.NoError(t, e.l.SetLinkPriority(peer, true))
	assert.Equal(t, maxHighPriorityQuota, a.quota)
	assert.Equal(t, 3, b.quota)

	c := e.l.allocateLCB(peer3, bthost.TransportBREDR)
	assert.Equal(t, 5, a.quota)
	assert.Equal(t, 2, b.quota, "remainder spread one per link")
	assert.Equal(t, 1, c.quota)

	le := e.l.allocateLCB(peer, bthost.TransportLE)
	assert.Equal(t, 64, le.quota, "dedicated le buffers")
}

func TestRoundRobinLinksShareQuota(t *testing.T) {
	e := newEnv(t)
	e.ctrl.bufs = 2
	e.l.SetBuffers()

	l1 := e.linkUp(t, peer, 0x0040, bthost.TransportBREDR, bthost.RoleMaster)
	l2 := e.linkUp(t, peer2, 0x0041, bthost.TransportBREDR, bthost.RoleMaster)
	require.Len(t, e.ctrl.pkts, 2)

	l3 := e.linkUp(t, peer3, 0x0042, bthost.TransportBREDR, bthost.RoleMaster)
	for _, lk := range []*lcb{l1, l2, l3} {
		assert.Zero(t, lk.quota)
	}
	p := e.l.poolFor(bthost.TransportBREDR)
	assert.Equal(t, 2, p.rrQuota)
	assert.Equal(t, 2, p.rrUnacked)
	require.Len(t, e.ctrl.pkts, 2, "third info request waits for a buffer")
	assert.Len(t, l3.linkQ, 1)

	e.l.NumCompletedPackets(0x0040, 1)
	out := e.ctrl.pdusSince(2)
	require.Len(t, out, 1)
	assert.Equal(t, uint16(CIDSignalling), out[0].cid)
	assert.Empty(t, l3.linkQ)
	assert.Equal(t, 2, p.rrUnacked)
}

func TestCongestionHysteresis(t *testing.T) {
	e := newEnv(t)
	rec := &recorder{}
	lk := e.l.allocateLCB(peer, bthost.TransportBREDR)
	c := e.l.allocateCCB(lk, 0)
	c.reg = &Registration{Callbacks: rec.callbacks()}
	c.buffQuota = 4

	c.txq = make([][]byte, 4)
	e.l.checkCongestion(c)
	assert.Empty(t, rec.congestion)

	c.txq = make([][]byte, 5)
	e.l.checkCongestion(c)
	e.l.checkCongestion(c)
	assert.Equal(t, []bool{true}, rec.congestion, "edges only")

	c.txq = make([][]byte, 3)
	e.l.checkCongestion(c)
	assert.Equal(t, []bool{true}, rec.congestion)

	c.txq = make([][]byte, 2)
	e.l.checkCongestion(c)
	assert.Equal(t, []bool{true, false}, rec.congestion)
}

func TestDataWriteCongestion(t *testing.T) {
	e := newEnv(t)
	rec := &recorder{}
	lk := e.linkUp(t, peer, handle, bthost.TransportBREDR, bthost.RoleMaster)
	c := e.openChannel(t, lk, 0x0041, rec)
	require.Equal(t, 4, c.buffQuota)

	p := e.l.poolFor(bthost.TransportBREDR)
	p.window = 0
	for i := 0; i < 4; i++ {
		assert.Equal(t, WriteSuccess, e.l.DataWrite(c.localCID, []byte{byte(i)}))
	}
	assert.Equal(t, WriteCongested, e.l.DataWrite(c.localCID, []byte{4}))
	assert.Equal(t, WriteFailed, e.l.DataWrite(c.localCID, []byte{5}))
	assert.Equal(t, []bool{true}, rec.congestion)

	n := e.mark()
	e.l.NumCompletedPackets(handle, 2)
	assert.Len(t, e.ctrl.pdusSince(n), 2)
	assert.Equal(t, []bool{true}, rec.congestion)

	e.l.NumCompletedPackets(handle, 2)
	assert.Len(t, e.ctrl.pdusSince(n), 4)
	assert.Equal(t, []bool{true, false}, rec.congestion)
}

func TestChannelDataRate(t *testing.T) {
	e := newEnv(t)
	lk := e.l.allocateLCB(peer, bthost.TransportBREDR)
	c := e.l.allocateCCB(lk, 0)
	require.NoError(t, e.l.SetChannelDataRate(c.localCID, DataRateHigh, DataRateMedium))
	assert.Equal(t, chnlQuotaPerRate*int(DataRateHigh+DataRateMedium), c.buffQuota)
	assert.Error(t, e.l.SetChannelDataRate(c.localCID, DataRate(9), DataRateLow))
}
