// Package pbft
//
// @author: xwc1125
package pbft

import (
	stdjson "encoding/json"

	"github.com/xaviwho/poa-pow-sims/metrics"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// rawMessage 调用方透传的json，不做解析
type rawMessage = stdjson.RawMessage

// PhaseDurations 各阶段配置的时长（毫秒）
type PhaseDurations struct {
	PrePrepare uint64 `json:"prePrepare"`
	Prepare    uint64 `json:"prepare"`
	Commit     uint64 `json:"commit"`
	ViewChange uint64 `json:"viewChange"`
}

// Configuration 报告中的pbft配置
type Configuration struct {
	ValidatorCount       int            `json:"validatorCount"`
	ByzantineCount       int            `json:"byzantineValidatorCount"`
	FailureProbability   float64        `json:"failureProbability"`
	MaxTolerableFailures int            `json:"maxTolerableFailures"`
	PhaseDurations       PhaseDurations `json:"phaseDurations"`
}

func newConfiguration(config *pbftProtocol.PBFTConfig) Configuration {
	return Configuration{
		ValidatorCount:       config.ValidatorCount,
		ByzantineCount:       config.ByzantineCount,
		FailureProbability:   config.FailureProbability,
		MaxTolerableFailures: pbftProtocol.FaultTolerantNum(config.ValidatorCount),
		PhaseDurations: PhaseDurations{
			PrePrepare: config.PrePrepareTimeout,
			Prepare:    config.PrepareTimeout,
			Commit:     config.CommitTimeout,
			ViewChange: config.ViewChangeTimeout,
		},
	}
}

// Report 一次运行的输出文档
type Report struct {
	RunID string `json:"-"`

	ConsensusMechanism string       `json:"consensusMechanism"`
	Transactions       []rawMessage `json:"transactions"`
	GasUsage           []rawMessage `json:"gasUsage"`

	Blocks          []pbftProtocol.BlockRecord      `json:"blocks"`
	FinalityTimes   []pbftProtocol.FinalityRecord   `json:"finalityTimes"`
	ConsensusPhases []pbftProtocol.PhaseRecord      `json:"consensusPhases"`
	ByzantineEvents []pbftProtocol.ByzantineEvent   `json:"byzantineEvents"`
	ViewChanges     []pbftProtocol.ViewChangeRecord `json:"viewChanges"`
	NetworkMessages []pbftProtocol.NetworkMessage   `json:"networkMessages"`

	PBFTConfiguration Configuration `json:"pbftConfiguration"`
}

func newReport(runID string, config *pbftProtocol.PBFTConfig, result metrics.Result, transactions, gasUsage []rawMessage) *Report {
	return &Report{
		RunID:              runID,
		ConsensusMechanism: ConsensusMechanism,
		Transactions:       append(make([]rawMessage, 0, len(transactions)), transactions...),
		GasUsage:           append(make([]rawMessage, 0, len(gasUsage)), gasUsage...),
		Blocks:             result.Blocks,
		FinalityTimes:      result.FinalityTimes,
		ConsensusPhases:    result.ConsensusPhases,
		ByzantineEvents:    result.ByzantineEvents,
		ViewChanges:        result.ViewChanges,
		NetworkMessages:    result.NetworkMessages,
		PBFTConfiguration:  newConfiguration(config),
	}
}

// Result 报告中的指标记录
func (r *Report) Result() metrics.Result {
	return metrics.Result{
		Blocks:          r.Blocks,
		FinalityTimes:   r.FinalityTimes,
		ConsensusPhases: r.ConsensusPhases,
		ByzantineEvents: r.ByzantineEvents,
		ViewChanges:     r.ViewChanges,
		NetworkMessages: r.NetworkMessages,
	}
}

// Report 当前运行的报告，记录为深拷贝
func (s *Simulator) Report() *Report {
	s.echoLock.Lock()
	defer s.echoLock.Unlock()
	return newReport(s.runID, s.config, s.recorder.Result(), s.transactions, s.gasUsage)
}

// AddTransaction 透传一条交易数据到报告
func (s *Simulator) AddTransaction(data []byte) error {
	return s.addEcho(&s.transactions, data)
}

// AddGasUsage 透传一条gas数据到报告
func (s *Simulator) AddGasUsage(data []byte) error {
	return s.addEcho(&s.gasUsage, data)
}

func (s *Simulator) addEcho(dst *[]rawMessage, data []byte) error {
	if !stdjson.Valid(data) {
		return errInvalidEcho
	}
	s.echoLock.Lock()
	defer s.echoLock.Unlock()
	*dst = append(*dst, append(rawMessage(nil), data...))
	return nil
}
