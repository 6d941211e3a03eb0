// Package core
//
// @author: xwc1125
package core

import (
	"fmt"

	"github.com/chain5j/chain5j-pkg/crypto/hashalg/sha3"
	"github.com/chain5j/chain5j-pkg/types"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// Request 处理一个工作项，直到提交或失败。
// 轮次失败通过结果返回；只有引擎误用或被停止时才返回error
func (c *core) Request(request *pbftProtocol.Request) (*pbftProtocol.RoundResult, error) {
	if !c.started.Load() {
		return nil, pbftProtocol.ErrStoppedEngine
	}
	if err := c.checkRequestMsg(request); err != nil {
		c.log.Debug("request-1) check request msg err", "err", err)
		return nil, err
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.log.Error("request-1) reject request, round already in flight", "id", request.ID, "height", c.Height())
		return nil, pbftProtocol.ErrRoundInFlight
	}
	defer c.inFlight.Store(false)

	req := *request
	if req.Digest.Nil() {
		req.Digest = digest(req.Payload)
	}

	height := c.height.Inc()
	c.log.Debug("request-2) handle request", "id", req.ID, "height", height, "digest", req.Digest.Hex())
	if err := c.startNewRound(height, &req); err != nil {
		return nil, err
	}
	return c.handleRequest()
}

// handleRequest 依次执行三个阶段，任一阶段失败即终止
func (c *core) handleRequest() (*pbftProtocol.RoundResult, error) {
	rs := c.currentRoundState
	steps := []func() error{
		c.SendPrePrepare,
		c.SendPrepare,
		c.SendCommit,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.log.Error("request-3) round aborted", "height", rs.Height(), "view", rs.View(), "err", err)
			return nil, err
		}
		if rs.State() == pbftProtocol.StateFailed {
			return c.handleRoundFailure()
		}
	}
	return c.FinalCommit(), nil
}

// checkRequestMsg 检测请求
func (c *core) checkRequestMsg(request *pbftProtocol.Request) error {
	if request == nil {
		return fmt.Errorf("%w: nil request", errInvalidRequest)
	}
	if request.ID == "" {
		return fmt.Errorf("%w: empty id", errInvalidRequest)
	}
	return nil
}

// digest 负载摘要，不解析负载内容
func digest(payload []byte) types.Hash {
	return types.BytesToHash(sha3.Keccak256(payload))
}

// txHash finality记录中的工作项标识
func txHash(request *pbftProtocol.Request) string {
	if request.ID != "" {
		return request.ID
	}
	return request.Digest.Hex()
}
