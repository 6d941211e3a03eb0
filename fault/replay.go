// Package fault
//
// @author: xwc1125
package fault

import (
	"sync"

	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// Decision 一次故障决策
type Decision struct {
	Index    int                   `json:"validatorIndex"`
	Phase    pbftProtocol.Phase    `json:"phase"`
	Behavior pbftProtocol.Behavior `json:"behavior"`
}

// Tracer 记录被包装模型的全部决策，用于回放
type Tracer struct {
	model pbftProtocol.FaultModel

	mu        sync.Mutex
	decisions []Decision
}

// NewTracer 包装故障模型
func NewTracer(model pbftProtocol.FaultModel) *Tracer {
	return &Tracer{model: model}
}

// Decide 实现 FaultModel.Decide
func (t *Tracer) Decide(val pbftProtocol.Validator, phase pbftProtocol.Phase) pbftProtocol.Behavior {
	b := t.model.Decide(val, phase)
	t.mu.Lock()
	t.decisions = append(t.decisions, Decision{Index: val.Index(), Phase: phase, Behavior: b})
	t.mu.Unlock()
	return b
}

// Decisions 已记录的决策
func (t *Tracer) Decisions() []Decision {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Decision(nil), t.decisions...)
}

// Replay 按顺序回放决策序列。序列耗尽后返回Normal
type Replay struct {
	mu        sync.Mutex
	decisions []Decision
	pos       int
	mismatch  int
}

// NewReplay 创建回放模型
func NewReplay(decisions []Decision) *Replay {
	return &Replay{decisions: append([]Decision(nil), decisions...)}
}

// Decide 实现 FaultModel.Decide
func (r *Replay) Decide(val pbftProtocol.Validator, phase pbftProtocol.Phase) pbftProtocol.Behavior {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.decisions) {
		return pbftProtocol.BehaviorNormal
	}
	d := r.decisions[r.pos]
	r.pos++
	if d.Index != val.Index() || d.Phase != phase {
		r.mismatch++
	}
	return d.Behavior
}

// Mismatches 回放时与记录不一致的调用次数
func (r *Replay) Mismatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mismatch
}
