// Package protocol
//
// @author: xwc1125
package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// VoteSet 一个阶段内的投票集合
type VoteSet struct {
	phase  Phase        // 阶段
	valSet ValidatorSet // 验证者集合

	votes     map[string]Behavior // validator-->行为
	byzantine int                 // 触发故障的个数
}

// NewVoteSet 根据validatorSet构造voteSet
func NewVoteSet(phase Phase, valSet ValidatorSet) *VoteSet {
	return &VoteSet{
		phase:  phase,
		valSet: valSet,
		votes:  make(map[string]Behavior),
	}
}

// Phase 获取集合的阶段
func (vs *VoteSet) Phase() Phase {
	return vs.phase
}

// Add 记录验证者在该阶段的行为。宕机的验证者只计入故障，不计入参与者
func (vs *VoteSet) Add(val Validator, behavior Behavior) error {
	if _, v := vs.valSet.GetById(val.ID()); v == nil {
		return ErrUnknownValidator
	}
	if behavior.Faulty() {
		vs.byzantine++
	}
	if !behavior.Counted() {
		return nil
	}
	vs.votes[val.ID()] = behavior
	return nil
}

// Size 参与者个数
func (vs *VoteSet) Size() int {
	return len(vs.votes)
}

// Byzantine 触发故障的个数
func (vs *VoteSet) Byzantine() int {
	return vs.byzantine
}

// Delayed 参与者中是否有延迟节点
func (vs *VoteSet) Delayed() bool {
	for _, b := range vs.votes {
		if b == BehaviorDelayed {
			return true
		}
	}
	return false
}

// Certificate 按f计算门限
func (vs *VoteSet) Certificate() QuorumCertificate {
	return Evaluate(vs.phase, vs.Size(), vs.valSet.FaultTolerantNum())
}

// String 打印所有参与者
func (vs *VoteSet) String() string {
	ids := make([]string, 0, len(vs.votes))
	for id := range vs.votes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("[%v]", strings.Join(ids, ", "))
}
