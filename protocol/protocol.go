// Package protocol
//
// @author: xwc1125
package protocol

import (
	"time"
)

// PBFTEngine pbft共识引擎
type PBFTEngine interface {
	Start() error
	Stop() error
	Request(*Request) (*RoundResult, error) // 处理一个工作项，直到提交或失败
	CurrentView() View                      // 当前视图
	Height() uint64                         // 已处理的最新高度
}

// PBFTBackend pbft核心函数接口
type PBFTBackend interface {
	Config() *PBFTConfig       // 配置
	Validators() ValidatorSet  // validator的集合
	FaultModel() FaultModel    // 故障模型
	Recorder() MetricsRecorder // 指标记录

	Now() int64                // 当前时间戳（毫秒）
	Commit(*RoundResult) error // 提交已达成一致的结果
}

// FaultModel 故障模型。决定验证者在某阶段的行为
type FaultModel interface {
	Decide(val Validator, phase Phase) Behavior
}

// MetricsRecorder 指标记录，只追加
type MetricsRecorder interface {
	RecordPhase(PhaseRecord)
	RecordNetwork(NetworkMessage)
	RecordByzantine(ByzantineEvent)
	RecordViewChange(ViewChangeRecord)
	RecordBlock(BlockRecord)
	RecordFinality(FinalityRecord)
}

// Sleeper 挂起等待。为nil时阶段时长只做累加
type Sleeper interface {
	Sleep(d time.Duration) error
}
