// Package core
//
// @author: xwc1125
package core

import (
	"github.com/xaviwho/poa-pow-sims/protocol"
)

// SendPrepare 非primary的验证者发送prepare消息
func (c *core) SendPrepare() error {
	rs := c.currentRoundState
	c.log.Debug("prepare-1) collect prepare messages", "height", rs.Height(), "view", rs.View(), "digest", rs.Subject().Digest.Hex())

	// 只有一个验证者时，primary的提案即为其prepare
	if c.valSet.Size() == 1 {
		return c.prepareBySoleValidator()
	}
	for _, val := range c.valSet.List() {
		// primary的prepare隐含在提案中
		if c.isProposer(val) {
			continue
		}
		behavior := c.decide(val, protocol.PhasePrepare)
		if err := rs.Prepares.Add(val, behavior); err != nil {
			return err
		}
		if behavior.Counted() {
			c.valSet.MarkSent(protocol.PhasePrepare, val.Index())
		}
	}
	return c.HandlePrepare()
}

func (c *core) prepareBySoleValidator() error {
	rs := c.currentRoundState
	primary := rs.Primary()
	if err := rs.Prepares.Add(primary, protocol.BehaviorNormal); err != nil {
		return err
	}
	c.valSet.MarkSent(protocol.PhasePrepare, primary.Index())
	return c.HandlePrepare()
}

// HandlePrepare 统计prepare消息并检查门限
func (c *core) HandlePrepare() error {
	rs := c.currentRoundState
	count := rs.Prepares.Size()
	c.valSet.MarkReceived(protocol.PhasePrepare, count)

	duration := c.phaseDuration(protocol.PhasePrepare, rs.Prepares)
	if err := c.wait(duration); err != nil {
		return err
	}
	msg := c.broadcast(protocol.PhasePrepare, count)
	c.recordPhase(duration, msg, rs.Prepares)

	if !c.reachPrepareThreshold() {
		qc := rs.Prepares.Certificate()
		c.log.Warn("prepare-2) insufficient prepare messages", "height", rs.Height(), "view", rs.View(), "count", qc.Participants, "required", qc.Required, "prepares", rs.Prepares)
		rs.Fail(qc.Err())
		return nil
	}

	c.log.Debug("prepare-2) prepare threshold reached", "height", rs.Height(), "view", rs.View(), "count", count, "duration", duration)
	rs.SetState(protocol.StateCommit)
	return nil
}

// reachPrepareThreshold 达到prepare的门限
func (c *core) reachPrepareThreshold() bool {
	return c.currentRoundState.Prepares.Certificate().Agreed()
}
