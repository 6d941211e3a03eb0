// Package core
//
// @author: xwc1125
package core

import (
	"time"

	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// wait 阶段结束或视图轮换等待时挂起。非Realtime模式下耗时只做累加
func (c *core) wait(d time.Duration) error {
	if !c.config.Realtime || d <= 0 {
		return nil
	}
	if c.sleeper != nil {
		return c.sleeper.Sleep(d)
	}

	c.quitLock.Lock()
	quit := c.quitCh
	c.quitLock.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-quit:
		return pbftProtocol.ErrStoppedEngine
	}
}

// decide 咨询故障模型。触发的故障计入验证者并生成ByzantineEvent
func (c *core) decide(val pbftProtocol.Validator, phase pbftProtocol.Phase) pbftProtocol.Behavior {
	behavior := c.faults.Decide(val, phase)
	if !behavior.Faulty() {
		return behavior
	}

	c.valSet.MarkFailure(val.Index())
	event := pbftProtocol.ByzantineEvent{
		Timestamp:      c.backend.Now(),
		Validator:      val.ID(),
		ValidatorIndex: val.Index(),
		BlockHeight:    c.Height(),
		View:           c.CurrentView(),
		Phase:          phase,
		FailureType:    behavior,
	}
	c.metrics.RecordByzantine(event)
	c.log.Debug("byzantine behavior triggered", "validator", val.ID(), "index", val.Index(), "height", event.BlockHeight, "view", event.View, "phase", phase, "type", behavior)
	return behavior
}

// phaseDuration 阶段耗时。有延迟节点参与时增加一次惩罚
func (c *core) phaseDuration(phase pbftProtocol.Phase, votes *pbftProtocol.VoteSet) time.Duration {
	d := c.config.PhaseDuration(phase)
	if votes.Delayed() {
		d += c.config.DelayPenaltyDuration()
	}
	return d
}

// recordPhase 记录一次阶段尝试
func (c *core) recordPhase(d time.Duration, msg pbftProtocol.NetworkMessage, votes *pbftProtocol.VoteSet) {
	rs := c.currentRoundState
	rs.SetTiming(votes.Phase(), d)
	c.metrics.RecordPhase(pbftProtocol.PhaseRecord{
		BlockHeight:      rs.Height(),
		View:             rs.View(),
		Phase:            votes.Phase(),
		Duration:         d.Milliseconds(),
		MessageCount:     msg.MessageCount,
		ParticipantCount: votes.Size(),
		ByzantineCount:   votes.Byzantine(),
	})
}
