// Package fault
//
// @author: xwc1125
package fault

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/chain5j/logger"
	"github.com/chain5j/logger/zap"
	"github.com/xaviwho/poa-pow-sims/protocol"
	"github.com/xaviwho/poa-pow-sims/validator"
)

func init() {
	zap.InitWithConfig(&logger.LogConfig{
		Console: logger.ConsoleLogConfig{
			Level:    4,
			Modules:  "*",
			ShowPath: false,
			Format:   "",
			UseColor: true,
			Console:  true,
		},
		File: logger.FileLogConfig{},
	})
}

func newTestSet(t *testing.T, profiles []protocol.ByzantineProfile) protocol.ValidatorSet {
	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = fmt.Sprintf("validator-%d", i)
	}
	valSet, err := validator.NewSet(ids, profiles)
	if err != nil {
		t.Fatal(err)
	}
	return valSet
}

var allPhases = []protocol.Phase{
	protocol.PhasePrePrepare,
	protocol.PhasePrepare,
	protocol.PhaseCommit,
	protocol.PhaseViewChange,
}

func TestHonestValidatorIsAlwaysNormal(t *testing.T) {
	config := protocol.DefaultConfig()
	config.FailureProbability = 1
	valSet := newTestSet(t, []protocol.ByzantineProfile{protocol.ProfileNone})
	m := NewModel(config)

	for i := 0; i < 100; i++ {
		for _, phase := range allPhases {
			if b := m.Decide(valSet.GetByIndex(0), phase); b != protocol.BehaviorNormal {
				t.Fatalf("honest validator behaved %v in %v", b, phase)
			}
		}
	}
}

func TestProfileBehavior(t *testing.T) {
	config := protocol.DefaultConfig()
	config.FailureProbability = 1
	valSet := newTestSet(t, []protocol.ByzantineProfile{
		protocol.ProfileCrash,
		protocol.ProfileMalicious,
		protocol.ProfileDelayed,
	})
	m := NewModel(config)

	want := []protocol.Behavior{
		protocol.BehaviorCrash,
		protocol.BehaviorMalicious,
		protocol.BehaviorDelayed,
	}
	for i, b := range want {
		if got := m.Decide(valSet.GetByIndex(uint64(i)), protocol.PhaseCommit); got != b {
			t.Errorf("validator %d: behavior mismatch: have %v, want %v", i, got, b)
		}
	}

	config.FailureProbability = 0
	m = NewModel(config)
	for i := range want {
		if got := m.Decide(valSet.GetByIndex(uint64(i)), protocol.PhaseCommit); got != protocol.BehaviorNormal {
			t.Errorf("validator %d: want normal with p=0, have %v", i, got)
		}
	}
}

func TestProbabilityOverrides(t *testing.T) {
	config := protocol.DefaultConfig()
	config.FailureProbability = 0
	config.PhaseFailureProbability = map[protocol.Phase]float64{protocol.PhasePrepare: 1}
	config.ValidatorFailureProbability = map[int]float64{1: 0}
	valSet := newTestSet(t, []protocol.ByzantineProfile{protocol.ProfileCrash, protocol.ProfileCrash})
	m := NewModel(config)

	if b := m.Decide(valSet.GetByIndex(0), protocol.PhasePrepare); b != protocol.BehaviorCrash {
		t.Errorf("phase override ignored: have %v", b)
	}
	if b := m.Decide(valSet.GetByIndex(0), protocol.PhaseCommit); b != protocol.BehaviorNormal {
		t.Errorf("default probability ignored: have %v", b)
	}
	if b := m.Decide(valSet.GetByIndex(1), protocol.PhasePrepare); b != protocol.BehaviorNormal {
		t.Errorf("validator override ignored: have %v", b)
	}
}

func TestSeedDeterminism(t *testing.T) {
	config := protocol.DefaultConfig()
	config.FailureProbability = 0.5
	valSet := newTestSet(t, []protocol.ByzantineProfile{
		protocol.ProfileNone,
		protocol.ProfileCrash,
		protocol.ProfileMalicious,
		protocol.ProfileDelayed,
	})

	run := func(seed int64) []Decision {
		tracer := NewTracer(NewModel(config, WithSeed(seed)))
		for i := 0; i < 50; i++ {
			for _, val := range valSet.List() {
				tracer.Decide(val, allPhases[i%len(allPhases)])
			}
		}
		return tracer.Decisions()
	}

	a, b := run(7), run(7)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different decisions")
	}
	if reflect.DeepEqual(a, run(8)) {
		t.Error("different seeds produced identical decisions")
	}
}

func TestReplay(t *testing.T) {
	valSet := newTestSet(t, []protocol.ByzantineProfile{protocol.ProfileNone, protocol.ProfileCrash})
	decisions := []Decision{
		{Index: 0, Phase: protocol.PhasePrePrepare, Behavior: protocol.BehaviorDelayed},
		{Index: 1, Phase: protocol.PhasePrepare, Behavior: protocol.BehaviorCrash},
	}
	r := NewReplay(decisions)

	if b := r.Decide(valSet.GetByIndex(0), protocol.PhasePrePrepare); b != protocol.BehaviorDelayed {
		t.Errorf("replay mismatch: have %v", b)
	}
	if b := r.Decide(valSet.GetByIndex(0), protocol.PhasePrepare); b != protocol.BehaviorCrash {
		t.Errorf("replay mismatch: have %v", b)
	}
	if r.Mismatches() != 1 {
		t.Errorf("mismatches: have %d, want 1", r.Mismatches())
	}
	if b := r.Decide(valSet.GetByIndex(1), protocol.PhaseCommit); b != protocol.BehaviorNormal {
		t.Errorf("exhausted replay should be normal, have %v", b)
	}
}

func TestFixed(t *testing.T) {
	valSet := newTestSet(t, []protocol.ByzantineProfile{protocol.ProfileNone, protocol.ProfileNone})
	f := Fixed{{Index: 1, Phase: protocol.PhaseCommit}: protocol.BehaviorMalicious}
	if b := f.Decide(valSet.GetByIndex(1), protocol.PhaseCommit); b != protocol.BehaviorMalicious {
		t.Errorf("fixed mismatch: have %v", b)
	}
	if b := f.Decide(valSet.GetByIndex(0), protocol.PhaseCommit); b != protocol.BehaviorNormal {
		t.Errorf("fixed default mismatch: have %v", b)
	}
}
