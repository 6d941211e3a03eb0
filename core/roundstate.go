// Package core
//
// @author: xwc1125
package core

import (
	"sync"
	"time"

	"github.com/xaviwho/poa-pow-sims/protocol"
)

// roundState 一轮共识的状态。轮次结束后归档到指标记录中
type roundState struct {
	subject *protocol.Subject     // 高度、视图及摘要
	request *protocol.Request     // 工作项
	primary protocol.Validator    // 本轮primary
	state   protocol.State        // 当前状态
	timings protocol.PhaseTimings // 各阶段耗时

	PrePrepare *protocol.VoteSet // pre-prepare阶段的投票
	Prepares   *protocol.VoteSet // prepare阶段的投票
	Commits    *protocol.VoteSet // commit阶段的投票

	err error // 失败原因
	mu  *sync.RWMutex
}

// newRoundState 创建新的state
func newRoundState(subject *protocol.Subject, validatorSet protocol.ValidatorSet, request *protocol.Request, primary protocol.Validator) *roundState {
	return &roundState{
		subject:    subject,
		request:    request,
		primary:    primary,
		state:      protocol.StatePrePrepare,
		PrePrepare: protocol.NewVoteSet(protocol.PhasePrePrepare, validatorSet),
		Prepares:   protocol.NewVoteSet(protocol.PhasePrepare, validatorSet),
		Commits:    protocol.NewVoteSet(protocol.PhaseCommit, validatorSet),
		mu:         new(sync.RWMutex),
	}
}

// Subject 主题
func (s *roundState) Subject() *protocol.Subject {
	return s.subject
}

func (s *roundState) Height() uint64 {
	return s.subject.Height
}

func (s *roundState) View() protocol.View {
	return s.subject.View
}

func (s *roundState) Primary() protocol.Validator {
	return s.primary
}

func (s *roundState) Request() *protocol.Request {
	return s.request
}

// State 当前状态
func (s *roundState) State() protocol.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState 状态只能前进，终态不可再修改
func (s *roundState) SetState(state protocol.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == protocol.StateCommitted || s.state == protocol.StateFailed {
		return
	}
	if state.Cmp(s.state) > 0 {
		s.state = state
	}
}

// SetTiming 设置阶段耗时
func (s *roundState) SetTiming(phase protocol.Phase, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch phase {
	case protocol.PhasePrePrepare:
		s.timings.PrePrepare = d
	case protocol.PhasePrepare:
		s.timings.Prepare = d
	case protocol.PhaseCommit:
		s.timings.Commit = d
	}
}

// Timings 各阶段耗时
func (s *roundState) Timings() protocol.PhaseTimings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timings
}

// Fail 进入失败状态
func (s *roundState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == protocol.StateCommitted || s.state == protocol.StateFailed {
		return
	}
	s.state = protocol.StateFailed
	s.err = err
}

// Result 生成轮次结果
func (s *roundState) Result() *protocol.RoundResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject := *s.subject
	result := &protocol.RoundResult{
		Subject: &subject,
		State:   s.state,
		Timings: s.timings,
		Err:     s.err,
	}
	if s.primary != nil {
		result.Primary = s.primary.ID()
	}
	if s.state == protocol.StateCommitted {
		result.TotalLatency = s.timings.Total()
	}
	return result
}
