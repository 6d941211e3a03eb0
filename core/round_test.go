// Package core
//
// @author: xwc1125
package core

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/xaviwho/poa-pow-sims/fault"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
	"github.com/xaviwho/poa-pow-sims/protocol/mockpbft"
)

func TestMonotonicView(t *testing.T) {
	config := testConfig(4)
	config.ByzantineCount = 2
	config.ByzantineProfiles = []pbftProtocol.ByzantineProfile{pbftProtocol.ProfileCrash}
	config.FailureProbability = 0.6
	config.Seed = 42
	e := newTestEngine(t, config, fault.NewModel(config), nil)

	var (
		lastView pbftProtocol.View
		failures int
	)
	for i := 1; i <= 100; i++ {
		result, err := e.Request(newRequest(i))
		if err != nil {
			t.Fatal(err)
		}
		view := result.Subject.View
		if view < lastView {
			t.Fatalf("round %d: view decreased from %d to %d", i, lastView, view)
		}
		if want := e.ids[view.PrimaryIndex(len(e.ids))]; result.Primary != want {
			t.Errorf("round %d: primary mismatch: have %s, want %s", i, result.Primary, want)
		}
		lastView = view

		if result.Committed() {
			if result.ViewChange != nil {
				t.Errorf("round %d: committed round should not change view", i)
			}
			continue
		}
		failures++
		vc := result.ViewChange
		if vc == nil {
			t.Fatalf("round %d: failed round without view change", i)
		}
		if vc.NewView != vc.OldView+1 || vc.OldView != view {
			t.Errorf("round %d: view change mismatch: %+v", i, vc)
		}
		if want := e.ids[vc.NewView.PrimaryIndex(len(e.ids))]; vc.NewPrimary != want {
			t.Errorf("round %d: new primary mismatch: have %s, want %s", i, vc.NewPrimary, want)
		}
	}
	if failures == 0 {
		t.Fatal("expected failures with crash probability 0.6")
	}
	if int(e.CurrentView()) != failures {
		t.Errorf("view should advance once per failure: view %d failures %d", e.CurrentView(), failures)
	}
	if n := len(e.recorder.Result().ViewChanges); n != failures {
		t.Errorf("view change records mismatch: have %d, want %d", n, failures)
	}
}

func TestRealtimeMatchesModelled(t *testing.T) {
	faults := fault.Fixed{
		{Index: 0, Phase: pbftProtocol.PhasePrePrepare}: pbftProtocol.BehaviorCrash,
		{Index: 2, Phase: pbftProtocol.PhasePrepare}:    pbftProtocol.BehaviorDelayed,
	}
	modelled := newTestEngine(t, testConfig(4), faults, nil)

	config := testConfig(4)
	config.Realtime = true
	mockCtl := gomock.NewController(t)
	sleeper := mockpbft.NewMockSleeper(mockCtl)
	var slept time.Duration
	sleeper.EXPECT().Sleep(gomock.Any()).DoAndReturn(func(d time.Duration) error {
		slept += d
		return nil
	}).AnyTimes()
	realtime := newTestEngine(t, config, faults, sleeper)

	for i := 1; i <= 5; i++ {
		a, err := modelled.Request(newRequest(i))
		if err != nil {
			t.Fatal(err)
		}
		b, err := realtime.Request(newRequest(i))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("round %d: results differ:\n%+v\n%+v", i, a, b)
		}
	}
	if !reflect.DeepEqual(modelled.recorder.Result(), realtime.recorder.Result()) {
		t.Error("records differ between timing modes")
	}
	// 1000ms视图轮换 + 4轮 (200+400+300)
	if slept != 4600*time.Millisecond {
		t.Errorf("suspended time mismatch: have %v, want 4.6s", slept)
	}
}

func TestRoundInFlight(t *testing.T) {
	config := testConfig(4)
	config.Realtime = true

	mockCtl := gomock.NewController(t)
	sleeper := mockpbft.NewMockSleeper(mockCtl)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sleeper.EXPECT().Sleep(gomock.Any()).DoAndReturn(func(d time.Duration) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	}).AnyTimes()
	e := newTestEngine(t, config, fault.Fixed{}, sleeper)

	done := make(chan error, 1)
	go func() {
		_, err := e.Request(newRequest(1))
		done <- err
	}()

	<-entered
	if _, err := e.Request(newRequest(2)); !errors.Is(err, pbftProtocol.ErrRoundInFlight) {
		t.Errorf("concurrent request: have %v, want %v", err, pbftProtocol.ErrRoundInFlight)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if e.Height() != 1 {
		t.Errorf("rejected request must not advance height: %d", e.Height())
	}
}

func TestStopInterruptsRealtimeWait(t *testing.T) {
	config := testConfig(4)
	config.Realtime = true
	config.PrePrepareTimeout = 60000
	e := newTestEngine(t, config, fault.Fixed{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Request(newRequest(1))
		done <- err
	}()
	for !e.inFlight.Load() {
		time.Sleep(time.Millisecond)
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, pbftProtocol.ErrStoppedEngine) {
			t.Errorf("interrupted request: have %v, want %v", err, pbftProtocol.ErrStoppedEngine)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not interrupt the phase wait")
	}
	if n := len(e.recorder.Result().ConsensusPhases); n != 0 {
		t.Errorf("interrupted phase must not be recorded: %d records", n)
	}
}

func TestSoleValidatorCommits(t *testing.T) {
	e := newTestEngine(t, testConfig(1), fault.Fixed{}, nil)

	for i := 1; i <= 3; i++ {
		result, err := e.Request(newRequest(i))
		if err != nil {
			t.Fatal(err)
		}
		if !result.Committed() {
			t.Fatalf("round %d should commit, reason: %s", i, result.Reason())
		}
		if result.TotalLatency != 800*time.Millisecond || result.Primary != e.ids[0] {
			t.Errorf("round %d: latency %v primary %s", i, result.TotalLatency, result.Primary)
		}
	}
	if e.CurrentView() != 0 {
		t.Errorf("view should not change: %d", e.CurrentView())
	}

	phases := e.recorder.Result().ConsensusPhases
	if prepare := phases[1]; prepare.Phase != pbftProtocol.PhasePrepare || prepare.ParticipantCount != 1 || prepare.MessageCount != 1 {
		t.Errorf("prepare record mismatch: %+v", prepare)
	}
	if got := e.valSet.Counters(0); got.PreparesSent != 3 || got.CommitsSent != 3 || got.Proposals != 3 {
		t.Errorf("counters mismatch: %+v", got)
	}
}

func TestSoleValidatorCrash(t *testing.T) {
	faults := fault.Fixed{
		{Index: 0, Phase: pbftProtocol.PhaseCommit}: pbftProtocol.BehaviorCrash,
	}
	e := newTestEngine(t, testConfig(1), faults, nil)

	result, err := e.Request(newRequest(1))
	if err != nil {
		t.Fatal(err)
	}
	if result.Committed() || result.Reason() != "insufficient commit messages: 0/1" {
		t.Errorf("commit crash should fail the round: %s", result.Reason())
	}
	if vc := result.ViewChange; vc == nil || vc.NewPrimary != e.ids[0] {
		t.Errorf("view change should keep the sole primary: %+v", vc)
	}
}

func TestValidatorSetSizes(t *testing.T) {
	tests := []struct {
		n      int
		f      int
		quorum int
	}{
		{n: 2, f: 0, quorum: 1},
		{n: 3, f: 0, quorum: 1},
		{n: 5, f: 1, quorum: 3},
		{n: 6, f: 1, quorum: 3},
		{n: 10, f: 3, quorum: 7},
	}
	for _, test := range tests {
		e := newTestEngine(t, testConfig(test.n), fault.Fixed{}, nil)
		if e.valSet.FaultTolerantNum() != test.f || e.valSet.QuorumSize() != test.quorum {
			t.Errorf("n=%d: f %d quorum %d", test.n, e.valSet.FaultTolerantNum(), e.valSet.QuorumSize())
		}
		result, err := e.Request(newRequest(1))
		if err != nil {
			t.Fatal(err)
		}
		if !result.Committed() {
			t.Errorf("n=%d: round should commit, reason: %s", test.n, result.Reason())
		}
		phases := e.recorder.Result().ConsensusPhases
		if phases[1].ParticipantCount != test.n-1 || phases[2].ParticipantCount != test.n {
			t.Errorf("n=%d: participants mismatch: %+v", test.n, phases)
		}
	}
}

func TestStopDuringViewChange(t *testing.T) {
	config := testConfig(4)
	config.Realtime = true
	config.ViewChangeTimeout = 60000
	faults := fault.Fixed{
		{Index: 0, Phase: pbftProtocol.PhasePrePrepare}: pbftProtocol.BehaviorCrash,
		{Index: 3, Phase: pbftProtocol.PhaseViewChange}: pbftProtocol.BehaviorCrash,
	}
	e := newTestEngine(t, config, faults, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.Request(newRequest(1))
		done <- err
	}()
	// 宕机的primary不挂起，区块记录后即进入视图轮换的等待
	for len(e.recorder.Result().Blocks) == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, pbftProtocol.ErrStoppedEngine) {
			t.Errorf("interrupted view change: have %v, want %v", err, pbftProtocol.ErrStoppedEngine)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not interrupt the view change wait")
	}

	res := e.recorder.Result()
	if e.CurrentView() != 0 {
		t.Errorf("interrupted view change must keep the view: %d", e.CurrentView())
	}
	if e.valSet.GetProposer().ID() != e.ids[0] {
		t.Errorf("interrupted view change must keep the primary: %s", e.valSet.GetProposer())
	}
	if len(res.ViewChanges) != 0 {
		t.Errorf("view change records: %d", len(res.ViewChanges))
	}
	for _, event := range res.ByzantineEvents {
		if event.Phase == pbftProtocol.PhaseViewChange {
			t.Errorf("view change decisions must not be recorded: %+v", event)
		}
	}
	if got := e.valSet.Counters(1); got.ViewChangesSent != 0 {
		t.Errorf("view change messages counted: %+v", got)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Success {
		t.Errorf("failed round block record mismatch: %+v", res.Blocks)
	}
}
