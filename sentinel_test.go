// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package discovery_test

import (
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v3/workertest"
	gc "gopkg.in/check.v1"

	"github.com/juju/discovery"
	"github.com/juju/discovery/discoverytest"
)

type SentinelSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&SentinelSuite{})

func (s *SentinelSuite) TestValidateNilSource(c *gc.C) {
	_, err := discovery.NewSentinelWatcher[string](discovery.SentinelConfig[string]{
		Clock:       testclock.NewClock(time.Time{}),
		QuietPeriod: time.Second,
	})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, "nil Source not valid")
}

func (s *SentinelSuite) TestValidateNilClock(c *gc.C) {
	_, err := discovery.NewSentinelWatcher[string](discovery.SentinelConfig[string]{
		Source:      discoverytest.NewWatcher(make(chan discovery.Change[string])),
		QuietPeriod: time.Second,
	})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, "nil Clock not valid")
}

func (s *SentinelSuite) TestValidateQuietPeriod(c *gc.C) {
	_, err := discovery.NewSentinelWatcher[string](discovery.SentinelConfig[string]{
		Source: discoverytest.NewWatcher(make(chan discovery.Change[string])),
		Clock:  testclock.NewClock(time.Time{}),
	})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	c.Check(err, gc.ErrorMatches, "non-positive QuietPeriod not valid")
}

func (s *SentinelSuite) newWatcher(c *gc.C) (chan discovery.Change[string], *discoverytest.Watcher[discovery.Change[string]], *testclock.Clock, *discovery.SentinelWatcher[string]) {
	changes := make(chan discovery.Change[string])
	source := discoverytest.NewWatcher(changes)
	clk := testclock.NewClock(time.Time{})
	w, err := discovery.NewSentinelWatcher[string](discovery.SentinelConfig[string]{
		Source:      source,
		Clock:       clk,
		QuietPeriod: time.Second,
	})
	c.Assert(err, jc.ErrorIsNil)
	return changes, source, clk, w
}

func (s *SentinelSuite) TestRelaysChanges(c *gc.C) {
	changes, _, _, w := s.newWatcher(c)
	defer workertest.CleanKill(c, w)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	changes <- added("one")
	wc.AssertChange(added("one"))
	changes <- modified("one")
	wc.AssertChange(modified("one"))
	changes <- removed("one")
	wc.AssertChange(removed("one"))
}

func (s *SentinelSuite) TestInjectsSentinelWhenQuiet(c *gc.C) {
	changes, _, clk, w := s.newWatcher(c)
	defer workertest.CleanKill(c, w)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	changes <- added("one")
	wc.AssertChange(added("one"))

	c.Assert(clk.WaitAdvance(time.Second, discoverytest.LongWait, 1), jc.ErrorIsNil)
	wc.AssertChange(sentinel())

	// The next burst gets its own marker.
	changes <- added("two")
	wc.AssertChange(added("two"))
	c.Assert(clk.WaitAdvance(time.Second, discoverytest.LongWait, 1), jc.ErrorIsNil)
	wc.AssertChange(sentinel())
}

func (s *SentinelSuite) TestNoSentinelWithoutChanges(c *gc.C) {
	_, _, clk, w := s.newWatcher(c)
	defer workertest.CleanKill(c, w)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	clk.Advance(time.Hour)
	wc.AssertNoChange()
}

func (s *SentinelSuite) TestNewChangeRestartsQuietPeriod(c *gc.C) {
	changes, _, clk, w := s.newWatcher(c)
	defer workertest.CleanKill(c, w)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	changes <- added("one")
	wc.AssertChange(added("one"))
	c.Assert(clk.WaitAdvance(500*time.Millisecond, discoverytest.LongWait, 1), jc.ErrorIsNil)

	// A second change half way through abandons the first alarm, so
	// its expiry produces nothing.
	changes <- added("two")
	wc.AssertChange(added("two"))
	c.Assert(clk.WaitAdvance(500*time.Millisecond, discoverytest.LongWait, 2), jc.ErrorIsNil)
	wc.AssertNoChange()

	c.Assert(clk.WaitAdvance(500*time.Millisecond, discoverytest.LongWait, 1), jc.ErrorIsNil)
	wc.AssertChange(sentinel())
}

func (s *SentinelSuite) TestSourceSentinelSuppressesInjection(c *gc.C) {
	changes, _, clk, w := s.newWatcher(c)
	defer workertest.CleanKill(c, w)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	changes <- added("one")
	wc.AssertChange(added("one"))
	changes <- sentinel()
	wc.AssertChange(sentinel())

	// The source delimited the batch itself; the pending alarm must
	// not add another marker.
	clk.Advance(time.Second)
	wc.AssertNoChange()
}

func (s *SentinelSuite) TestCompletionPropagates(c *gc.C) {
	changes, source, _, w := s.newWatcher(c)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	changes <- added("one")
	wc.AssertChange(added("one"))

	source.Kill()
	wc.AssertClosed()
	c.Assert(w.Wait(), jc.ErrorIsNil)
}

func (s *SentinelSuite) TestFailurePropagates(c *gc.C) {
	_, source, _, w := s.newWatcher(c)
	wc := discoverytest.NewWatcherC(c, w.Changes())

	source.KillErr(errors.New("registry unreachable"))
	wc.AssertClosed()
	err := workertest.CheckKilled(c, w)
	c.Assert(err, gc.ErrorMatches, "registry unreachable")
}

func (s *SentinelSuite) TestComposesWithBatchWatcher(c *gc.C) {
	changes, _, clk, sw := s.newWatcher(c)
	bw, err := discovery.NewBatchWatcher[string](sw)
	c.Assert(err, jc.ErrorIsNil)
	defer workertest.CleanKill(c, bw)
	wc := discoverytest.NewWatcherC(c, bw.Changes())

	changes <- added("one")
	changes <- added("two")
	c.Assert(clk.WaitAdvance(time.Second, discoverytest.LongWait, 2), jc.ErrorIsNil)
	wc.AssertChange([]discovery.Change[string]{added("one"), added("two")})
}
