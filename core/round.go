// Package core
//
// @author: xwc1125
package core

import (
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// startNewRound 开启新的轮次。primary由当前视图决定
func (c *core) startNewRound(height uint64, request *pbftProtocol.Request) error {
	view := c.CurrentView()
	c.valSet.CalcProposer(view)
	primary := c.valSet.GetProposer()
	if primary == nil {
		c.log.Error("no primary for view", "view", view, "size", c.valSet.Size())
		return errNoPrimary
	}

	subject := &pbftProtocol.Subject{
		Height: height,
		View:   view,
		Digest: request.Digest,
	}
	c.currentRoundState = newRoundState(subject, c.valSet, request, primary)
	c.log.Debug("new round", "height", height, "view", view, "primary", primary, "size", c.valSet.Size(), "quorum", c.valSet.QuorumSize())
	return nil
}

// handleRoundFailure 归档失败的轮次。若没有正在进行的视图轮换，同步执行一次
func (c *core) handleRoundFailure() (*pbftProtocol.RoundResult, error) {
	rs := c.currentRoundState
	result := rs.Result()
	c.metrics.RecordBlock(blockRecord(result))
	c.log.Warn("round failed", "height", rs.Height(), "view", rs.View(), "primary", result.Primary, "reason", result.Reason())

	if !c.viewChanging.CompareAndSwap(false, true) {
		c.log.Debug("view change already in progress", "view", c.CurrentView())
		return result, nil
	}
	defer c.viewChanging.Store(false)

	record, err := c.changeView(result.Reason())
	if err != nil {
		return nil, err
	}
	result.ViewChange = record
	return result, nil
}

// changeView 视图轮换：等待超时后view+1，收集轮换消息并切换primary。
// 等待被Stop中断时视图保持不变；未达到2f+1时只记录警告，仍然使用新视图
func (c *core) changeView(reason string) (*pbftProtocol.ViewChangeRecord, error) {
	oldView := c.CurrentView()
	newView := oldView.Next()
	c.log.Debug("viewChange-1) start view change", "oldView", oldView, "newView", newView, "reason", reason)

	duration := c.config.PhaseDuration(pbftProtocol.PhaseViewChange)
	if err := c.wait(duration); err != nil {
		c.log.Warn("viewChange-1) view change interrupted", "view", oldView, "err", err)
		return nil, err
	}

	c.view.Store(uint64(newView))
	c.valSet.CalcProposer(newView)

	votes := pbftProtocol.NewVoteSet(pbftProtocol.PhaseViewChange, c.valSet)
	for _, val := range c.valSet.List() {
		behavior := c.decide(val, pbftProtocol.PhaseViewChange)
		if err := votes.Add(val, behavior); err != nil {
			return nil, err
		}
		if behavior.Counted() {
			c.valSet.MarkSent(pbftProtocol.PhaseViewChange, val.Index())
		}
	}

	if qc := votes.Certificate(); !qc.Agreed() {
		c.log.Warn("viewChange-2) view change quorum not reached, proceeding with new view", "newView", newView, "count", qc.Participants, "required", qc.Required)
	}

	msg := c.broadcast(pbftProtocol.PhaseViewChange, votes.Size())
	primary := c.valSet.GetProposer()
	record := pbftProtocol.ViewChangeRecord{
		Timestamp:    c.backend.Now(),
		OldView:      oldView,
		NewView:      newView,
		Reason:       reason,
		Duration:     duration.Milliseconds(),
		MessageCount: msg.MessageCount,
		NewPrimary:   primary.ID(),
	}
	c.metrics.RecordViewChange(record)
	c.log.Debug("viewChange-3) view changed", "oldView", oldView, "newView", newView, "newPrimary", primary, "acks", votes.Size())
	return &record, nil
}
