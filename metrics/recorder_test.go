// Package metrics
//
// @author: xwc1125
package metrics

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xaviwho/poa-pow-sims/protocol"
)

func TestRecorderResultIsCopy(t *testing.T) {
	r := NewRecorder(nil)
	r.RecordBlock(protocol.BlockRecord{BlockHeight: 1, Success: true, TotalTime: 800})

	res := r.Result()
	res.Blocks[0].TotalTime = 1
	res.Blocks = append(res.Blocks, protocol.BlockRecord{BlockHeight: 2})

	again := r.Result()
	if len(again.Blocks) != 1 || again.Blocks[0].TotalTime != 800 {
		t.Errorf("result leaked internal state: %+v", again.Blocks)
	}
}

func TestRecorderEmptyArrays(t *testing.T) {
	data, err := json.Marshal(NewRecorder(nil).Result())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"blocks":[],"finalityTimes":[],"consensusPhases":[],"byzantineEvents":[],"viewChanges":[],"networkMessages":[]}`
	if string(data) != want {
		t.Errorf("json mismatch:\nhave %s\nwant %s", data, want)
	}
}

func TestRecorderConcurrentAppend(t *testing.T) {
	r := NewRecorder(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordPhase(protocol.PhaseRecord{BlockHeight: uint64(i)})
				_ = r.Result()
			}
		}(i)
	}
	wg.Wait()
	if n := len(r.Result().ConsensusPhases); n != 800 {
		t.Errorf("phase count mismatch: have %d, want 800", n)
	}
}

func TestRecorderSummaryAndBlock(t *testing.T) {
	r := NewRecorder(nil)
	r.RecordBlock(protocol.BlockRecord{BlockHeight: 1, Success: true, TotalTime: 800})
	r.RecordBlock(protocol.BlockRecord{BlockHeight: 2, Success: false, Error: "primary crashed during pre-prepare phase"})
	r.RecordFinality(protocol.FinalityRecord{TxHash: "tx-1", FinalityTime: 800})
	r.RecordNetwork(protocol.NetworkMessage{MessageCount: 4, MessageSize: 1024, TotalBytes: 4096})
	r.RecordNetwork(protocol.NetworkMessage{MessageCount: 12, MessageSize: 256, TotalBytes: 3072})
	r.RecordViewChange(protocol.ViewChangeRecord{OldView: 0, NewView: 1})

	want := Summary{
		Rounds:        2,
		Committed:     1,
		Failed:        1,
		ViewChanges:   1,
		TotalMessages: 16,
		TotalBytes:    7168,
		AvgFinality:   800,
	}
	if got := r.Summary(); !reflect.DeepEqual(got, want) {
		t.Errorf("summary mismatch:\nhave %+v\nwant %+v", got, want)
	}

	b, ok := r.Block(2)
	if !ok || b.Success {
		t.Errorf("block 2 mismatch: %+v %v", b, ok)
	}
	if _, ok := r.Block(3); ok {
		t.Error("block 3 should not exist")
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	r := NewRecorder(c)

	r.RecordBlock(protocol.BlockRecord{BlockHeight: 1, Success: true, TotalTime: 800})
	r.RecordBlock(protocol.BlockRecord{BlockHeight: 2, Success: false})
	r.RecordNetwork(protocol.NetworkMessage{Phase: protocol.PhasePrepare, MessageCount: 12, TotalBytes: 3072})
	r.RecordByzantine(protocol.ByzantineEvent{Phase: protocol.PhaseCommit, FailureType: protocol.BehaviorCrash})
	r.RecordViewChange(protocol.ViewChangeRecord{OldView: 0, NewView: 1, Duration: 1000})
	r.RecordPhase(protocol.PhaseRecord{Phase: protocol.PhasePrepare, Duration: 300, ParticipantCount: 3})

	if v := testutil.ToFloat64(c.rounds.WithLabelValues("committed")); v != 1 {
		t.Errorf("committed rounds: have %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.rounds.WithLabelValues("failed")); v != 1 {
		t.Errorf("failed rounds: have %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.messages.WithLabelValues("prepare")); v != 12 {
		t.Errorf("prepare messages: have %v, want 12", v)
	}
	if v := testutil.ToFloat64(c.bytes.WithLabelValues("prepare")); v != 3072 {
		t.Errorf("prepare bytes: have %v, want 3072", v)
	}
	if v := testutil.ToFloat64(c.byzantine.WithLabelValues("commit", "crash")); v != 1 {
		t.Errorf("byzantine events: have %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.viewChanges); v != 1 {
		t.Errorf("view changes: have %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.view); v != 1 {
		t.Errorf("view gauge: have %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.height); v != 2 {
		t.Errorf("height gauge: have %v, want 2", v)
	}
	if v := testutil.ToFloat64(c.participants.WithLabelValues("prepare")); v != 3 {
		t.Errorf("participants gauge: have %v, want 3", v)
	}
}
