// Package core
//
// @author: xwc1125
package core

import (
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// SendPrePrepare primary提出工作项。只咨询primary的故障模型
func (c *core) SendPrePrepare() error {
	rs := c.currentRoundState
	primary := rs.Primary()
	c.log.Debug("prePrepare-1) primary proposes request", "height", rs.Height(), "view", rs.View(), "primary", primary, "digest", rs.Subject().Digest.Hex())

	behavior := c.decide(primary, pbftProtocol.PhasePrePrepare)
	if err := rs.PrePrepare.Add(primary, behavior); err != nil {
		return err
	}
	return c.HandlePrePrepare(behavior)
}

// HandlePrePrepare 处理primary的提案
func (c *core) HandlePrePrepare(behavior pbftProtocol.Behavior) error {
	rs := c.currentRoundState
	primary := rs.Primary()

	// primary宕机，本轮立即失败
	if behavior == pbftProtocol.BehaviorCrash {
		c.log.Warn("prePrepare-2) primary crashed, no proposal", "height", rs.Height(), "view", rs.View(), "primary", primary)
		msg := c.broadcast(pbftProtocol.PhasePrePrepare, 0)
		c.recordPhase(0, msg, rs.PrePrepare)
		rs.Fail(pbftProtocol.ErrPrimaryFault)
		return nil
	}

	duration := c.phaseDuration(pbftProtocol.PhasePrePrepare, rs.PrePrepare)
	c.valSet.MarkProposal(primary.Index())
	if err := c.wait(duration); err != nil {
		return err
	}
	msg := c.broadcast(pbftProtocol.PhasePrePrepare, 1)
	c.recordPhase(duration, msg, rs.PrePrepare)

	c.log.Debug("prePrepare-2) accept pre-prepare", "height", rs.Height(), "view", rs.View(), "behavior", behavior, "duration", duration)
	rs.SetState(pbftProtocol.StatePrepare)
	return nil
}
