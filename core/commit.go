// Package core
//
// @author: xwc1125
package core

import (
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// SendCommit 所有验证者（包括primary）发送commit
func (c *core) SendCommit() error {
	rs := c.currentRoundState
	c.log.Debug("commit-1) collect commit messages", "height", rs.Height(), "view", rs.View(), "digest", rs.Subject().Digest.Hex())

	for _, val := range c.valSet.List() {
		behavior := c.decide(val, pbftProtocol.PhaseCommit)
		if err := rs.Commits.Add(val, behavior); err != nil {
			return err
		}
		if behavior.Counted() {
			c.valSet.MarkSent(pbftProtocol.PhaseCommit, val.Index())
		}
	}
	return c.HandleCommit()
}

// HandleCommit 统计commit消息，达到门限后提交
func (c *core) HandleCommit() error {
	rs := c.currentRoundState
	count := rs.Commits.Size()
	c.valSet.MarkReceived(pbftProtocol.PhaseCommit, count)

	duration := c.phaseDuration(pbftProtocol.PhaseCommit, rs.Commits)
	if err := c.wait(duration); err != nil {
		return err
	}
	msg := c.broadcast(pbftProtocol.PhaseCommit, count)
	c.recordPhase(duration, msg, rs.Commits)

	if !c.reachCommitThreshold() {
		qc := rs.Commits.Certificate()
		c.log.Warn("commit-2) insufficient commit messages", "height", rs.Height(), "view", rs.View(), "count", qc.Participants, "required", qc.Required, "commits", rs.Commits)
		rs.Fail(qc.Err())
		return nil
	}

	c.commit()
	return nil
}

// commit 提交
func (c *core) commit() {
	rs := c.currentRoundState
	rs.SetState(pbftProtocol.StateCommitted)

	if err := c.backend.Commit(rs.Result()); err != nil {
		// 共识已经达成，提交回调的错误不影响结果
		c.log.Error("commit-3) backend commit err", "height", rs.Height(), "err", err)
	}
}

// reachCommitThreshold 判断commit是否达到门限
func (c *core) reachCommitThreshold() bool {
	return c.currentRoundState.Commits.Certificate().Agreed()
}
