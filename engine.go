// Package pbft
//
// @author: xwc1125
package pbft

import (
	"time"

	"github.com/chain5j/chain5j-pkg/util/dateutil"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// maxPendingSeq 队列优先级为float32，超过2^24后无法精确表示顺序
const maxPendingSeq = int64(1) << 24

// Submit 将工作项放入待处理队列，按提交顺序执行。
// 队列清空后序号重新计数；序号用尽时返回errQueueFull
func (s *Simulator) Submit(request *pbftProtocol.Request) error {
	if request == nil || request.ID == "" {
		return errInvalidRequest
	}
	cpy := *request
	cpy.Payload = append([]byte(nil), request.Payload...)

	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()
	if s.pendingSize == 0 {
		s.pendingSeq = 0
	}
	if s.pendingSeq >= maxPendingSeq {
		return errQueueFull
	}
	s.pendingSeq++
	s.pending.Push(&cpy, float32(-s.pendingSeq))
	s.pendingSize++
	return nil
}

// Pending 待处理的工作项个数
func (s *Simulator) Pending() int {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()
	return s.pendingSize
}

func (s *Simulator) popPending() (*pbftProtocol.Request, bool) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()
	if s.pending.Empty() {
		return nil, false
	}
	m, _ := s.pending.Pop()
	s.pendingSize--
	return m.(*pbftProtocol.Request), true
}

// Run 依次处理队列中的工作项，直到队列为空或模拟器停止。
// 失败的轮次不会中断处理，只有引擎错误才会返回
func (s *Simulator) Run() ([]*pbftProtocol.RoundResult, error) {
	start := time.Now()
	results := make([]*pbftProtocol.RoundResult, 0, s.Pending())
	for {
		select {
		case <-s.ctx.Done():
			s.log.Warn("run interrupted", "processed", len(results), "pending", s.Pending())
			return results, pbftProtocol.ErrStoppedEngine
		default:
		}

		request, ok := s.popPending()
		if !ok {
			break
		}
		result, err := s.request(request)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	summary := s.Summary()
	s.log.Info("run finished", "rounds", len(results), "committed", summary.Committed, "failed", summary.Failed, "viewChanges", summary.ViewChanges, "view", s.pbftCore.CurrentView(), "elapsed", dateutil.PrettyDuration(time.Since(start)))
	return results, nil
}
