// Package metrics
//
// @author: xwc1125
package metrics

import (
	"sync"

	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

var (
	_ pbftProtocol.MetricsRecorder = new(Recorder)
)

// Result 一次模拟运行的全部记录
type Result struct {
	Blocks          []pbftProtocol.BlockRecord      `json:"blocks"`
	FinalityTimes   []pbftProtocol.FinalityRecord   `json:"finalityTimes"`
	ConsensusPhases []pbftProtocol.PhaseRecord      `json:"consensusPhases"`
	ByzantineEvents []pbftProtocol.ByzantineEvent   `json:"byzantineEvents"`
	ViewChanges     []pbftProtocol.ViewChangeRecord `json:"viewChanges"`
	NetworkMessages []pbftProtocol.NetworkMessage   `json:"networkMessages"`
}

func newResult() Result {
	return Result{
		Blocks:          make([]pbftProtocol.BlockRecord, 0),
		FinalityTimes:   make([]pbftProtocol.FinalityRecord, 0),
		ConsensusPhases: make([]pbftProtocol.PhaseRecord, 0),
		ByzantineEvents: make([]pbftProtocol.ByzantineEvent, 0),
		ViewChanges:     make([]pbftProtocol.ViewChangeRecord, 0),
		NetworkMessages: make([]pbftProtocol.NetworkMessage, 0),
	}
}

// Copy 深拷贝
func (r Result) Copy() Result {
	return Result{
		Blocks:          append(make([]pbftProtocol.BlockRecord, 0, len(r.Blocks)), r.Blocks...),
		FinalityTimes:   append(make([]pbftProtocol.FinalityRecord, 0, len(r.FinalityTimes)), r.FinalityTimes...),
		ConsensusPhases: append(make([]pbftProtocol.PhaseRecord, 0, len(r.ConsensusPhases)), r.ConsensusPhases...),
		ByzantineEvents: append(make([]pbftProtocol.ByzantineEvent, 0, len(r.ByzantineEvents)), r.ByzantineEvents...),
		ViewChanges:     append(make([]pbftProtocol.ViewChangeRecord, 0, len(r.ViewChanges)), r.ViewChanges...),
		NetworkMessages: append(make([]pbftProtocol.NetworkMessage, 0, len(r.NetworkMessages)), r.NetworkMessages...),
	}
}

// Recorder 只追加的指标记录。每次运行一个实例
type Recorder struct {
	lock      sync.RWMutex
	result    Result
	collector *Collector // 可选的prometheus导出
}

// NewRecorder 创建记录器，collector可为nil
func NewRecorder(collector *Collector) *Recorder {
	return &Recorder{
		result:    newResult(),
		collector: collector,
	}
}

// RecordPhase 记录一次阶段尝试
func (r *Recorder) RecordPhase(record pbftProtocol.PhaseRecord) {
	r.lock.Lock()
	r.result.ConsensusPhases = append(r.result.ConsensusPhases, record)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observePhase(record)
	}
}

// RecordNetwork 记录阶段的消息开销
func (r *Recorder) RecordNetwork(msg pbftProtocol.NetworkMessage) {
	r.lock.Lock()
	r.result.NetworkMessages = append(r.result.NetworkMessages, msg)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observeNetwork(msg)
	}
}

// RecordByzantine 记录故障事件
func (r *Recorder) RecordByzantine(event pbftProtocol.ByzantineEvent) {
	r.lock.Lock()
	r.result.ByzantineEvents = append(r.result.ByzantineEvents, event)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observeByzantine(event)
	}
}

// RecordViewChange 记录视图轮换
func (r *Recorder) RecordViewChange(record pbftProtocol.ViewChangeRecord) {
	r.lock.Lock()
	r.result.ViewChanges = append(r.result.ViewChanges, record)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observeViewChange(record)
	}
}

// RecordBlock 记录一轮共识的汇总
func (r *Recorder) RecordBlock(record pbftProtocol.BlockRecord) {
	r.lock.Lock()
	r.result.Blocks = append(r.result.Blocks, record)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observeBlock(record)
	}
}

// RecordFinality 记录最终性时间
func (r *Recorder) RecordFinality(record pbftProtocol.FinalityRecord) {
	r.lock.Lock()
	r.result.FinalityTimes = append(r.result.FinalityTimes, record)
	r.lock.Unlock()

	if r.collector != nil {
		r.collector.observeFinality(record)
	}
}

// Result 返回记录的拷贝，调用方可任意修改
func (r *Recorder) Result() Result {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.result.Copy()
}

// Block 按高度查找区块记录
func (r *Recorder) Block(height uint64) (pbftProtocol.BlockRecord, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for i := len(r.result.Blocks) - 1; i >= 0; i-- {
		if r.result.Blocks[i].BlockHeight == height {
			return r.result.Blocks[i], true
		}
	}
	return pbftProtocol.BlockRecord{}, false
}

// Summary 汇总统计
type Summary struct {
	Rounds          int     `json:"rounds"`
	Committed       int     `json:"committed"`
	Failed          int     `json:"failed"`
	ViewChanges     int     `json:"viewChanges"`
	ByzantineEvents int     `json:"byzantineEvents"`
	TotalMessages   uint64  `json:"totalMessages"`
	TotalBytes      uint64  `json:"totalBytes"`
	AvgFinality     float64 `json:"avgFinality"` // 毫秒
}

// Summary 计算汇总统计
func (r *Recorder) Summary() Summary {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s := Summary{
		Rounds:          len(r.result.Blocks),
		ViewChanges:     len(r.result.ViewChanges),
		ByzantineEvents: len(r.result.ByzantineEvents),
	}
	for _, b := range r.result.Blocks {
		if b.Success {
			s.Committed++
		} else {
			s.Failed++
		}
	}
	for _, m := range r.result.NetworkMessages {
		s.TotalMessages += m.MessageCount
		s.TotalBytes += m.TotalBytes
	}
	if n := len(r.result.FinalityTimes); n > 0 {
		var total int64
		for _, f := range r.result.FinalityTimes {
			total += f.FinalityTime
		}
		s.AvgFinality = float64(total) / float64(n)
	}
	return s
}
