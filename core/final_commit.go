// Package core
//
// @author: xwc1125
package core

import (
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// FinalCommit 归档已提交的轮次：区块汇总与最终性时间
func (c *core) FinalCommit() *pbftProtocol.RoundResult {
	rs := c.currentRoundState
	result := rs.Result()
	c.log.Debug("final_commit-1) round committed", "height", rs.Height(), "view", rs.View(), "primary", result.Primary, "latency", result.TotalLatency)

	c.metrics.RecordBlock(blockRecord(result))
	c.metrics.RecordFinality(pbftProtocol.FinalityRecord{
		TxHash:          txHash(rs.Request()),
		TransactionType: rs.Request().Type,
		FinalityTime:    result.TotalLatency.Milliseconds(),
		Timestamp:       c.backend.Now(),
	})
	return result
}

// blockRecord 轮次结果对应的区块汇总
func blockRecord(result *pbftProtocol.RoundResult) pbftProtocol.BlockRecord {
	return pbftProtocol.BlockRecord{
		BlockHeight: result.Subject.Height,
		View:        result.Subject.View,
		Primary:     result.Primary,
		PhaseTimings: pbftProtocol.PhaseTimingsRecord{
			PrePrepare: result.Timings.PrePrepare.Milliseconds(),
			Prepare:    result.Timings.Prepare.Milliseconds(),
			Commit:     result.Timings.Commit.Milliseconds(),
		},
		TotalTime: result.Timings.Total().Milliseconds(),
		Success:   result.Committed(),
		Error:     result.Reason(),
	}
}
