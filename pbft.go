// Package pbft
//
// @author: xwc1125
package pbft

import (
	"context"
	"fmt"
	"sync"
	"time"

	preque "github.com/chain5j/chain5j-pkg/collection/queues/preque"
	"github.com/chain5j/chain5j-pkg/crypto/hashalg/sha3"
	"github.com/chain5j/chain5j-pkg/database/kvstore"
	"github.com/chain5j/chain5j-pkg/util/dateutil"
	"github.com/chain5j/chain5j-pkg/util/hexutil"
	"github.com/chain5j/logger"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xaviwho/poa-pow-sims/core"
	"github.com/xaviwho/poa-pow-sims/fault"
	"github.com/xaviwho/poa-pow-sims/metrics"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
	"github.com/xaviwho/poa-pow-sims/validator"
)

var (
	_ pbftProtocol.PBFTBackend = new(Simulator)
)

const (
	memoryRoundsLen = 128 // 最近轮次结果的缓存个数

	ConsensusMechanism = "PBFT"
)

// Simulator pbft模拟器。持有一次运行的验证者集合、故障模型与指标记录
type Simulator struct {
	log    logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	runID  string // 运行标识

	config     *pbftProtocol.PBFTConfig  // pbft的配置
	valSet     pbftProtocol.ValidatorSet // 验证者集合
	faults     pbftProtocol.FaultModel   // 故障模型
	sleeper    pbftProtocol.Sleeper      // Realtime模式下的挂起
	pbftCore   pbftProtocol.PBFTEngine   // pbft核心引擎
	clock      func() int64              // 毫秒时间戳
	commitHook func(*pbftProtocol.RoundResult)

	recorder   *metrics.Recorder
	registerer prometheus.Registerer
	collector  *metrics.Collector

	db kvstore.Database

	// 待处理的工作项
	pendingLock sync.Mutex
	pending     *preque.Prque
	pendingSeq  int64
	pendingSize int

	// 调用方透传的数据
	echoLock     sync.Mutex
	transactions []rawMessage
	gasUsage     []rawMessage

	recentRounds *lru.ARCCache // height-->*RoundResult
}

// NewSimulator 创建模拟器。配置不合法时返回错误，不会开始任何轮次
func NewSimulator(rootCtx context.Context, opts ...option) (*Simulator, error) {
	ctx, cancel := context.WithCancel(rootCtx)
	s := &Simulator{
		log:     logger.New("pbft"),
		ctx:     ctx,
		cancel:  cancel,
		pending: preque.New(),
	}

	if err := apply(s, opts...); err != nil {
		s.log.Error("apply options error", "err", err)
		cancel()
		return nil, err
	}
	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Simulator) init() error {
	if s.config == nil {
		s.config = pbftProtocol.DefaultConfig()
	}
	if err := s.config.ValidateBasic(); err != nil {
		s.log.Error("invalid pbft config", "err", err)
		return err
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.clock == nil {
		s.clock = dateutil.CurrentTime
	}

	ids := s.config.Validators
	if len(ids) == 0 {
		ids = GenerateIdentities(s.config.ValidatorCount)
	}
	valSet, err := validator.NewSet(ids[:s.config.ValidatorCount], s.config.Profiles())
	if err != nil {
		s.log.Error("new validator set err", "err", err)
		return err
	}
	s.valSet = valSet

	if s.faults == nil {
		s.faults = fault.NewModel(s.config)
	}
	if s.registerer != nil {
		s.collector = metrics.NewCollector(s.registerer)
	}
	s.recorder = metrics.NewRecorder(s.collector)

	s.recentRounds, err = lru.NewARC(memoryRoundsLen)
	if err != nil {
		s.log.Error("lru new recent rounds arc err", "err", err)
		return err
	}

	// 创建PBFT的核心
	s.pbftCore = core.NewEngine(s, s.sleeper)

	s.log.Info("pbft simulator created", "runId", s.runID, "validators", s.valSet.Size(), "byzantine", s.config.ByzantineCount, "f", s.valSet.FaultTolerantNum(), "realtime", s.config.Realtime)
	return nil
}

// GenerateIdentities 生成n个确定的验证者地址
func GenerateIdentities(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		hash := sha3.Keccak256([]byte(fmt.Sprintf("pbft-validator-%d", i)))
		ids[i] = hexutil.Encode(hash[len(hash)-20:])
	}
	return ids
}

// Start 启动共识核心
func (s *Simulator) Start() error {
	return s.pbftCore.Start()
}

// Stop 停止共识核心，正在挂起的阶段会被中断
func (s *Simulator) Stop() error {
	s.cancel()
	return s.pbftCore.Stop()
}

// RunID 运行标识
func (s *Simulator) RunID() string {
	return s.runID
}

// RunConsensus 对一个工作项执行一轮共识。payload不做解析
func (s *Simulator) RunConsensus(id, txType string, payload []byte) (*pbftProtocol.RoundResult, error) {
	return s.request(&pbftProtocol.Request{
		ID:      id,
		Type:    txType,
		Payload: payload,
	})
}

func (s *Simulator) request(req *pbftProtocol.Request) (*pbftProtocol.RoundResult, error) {
	start := time.Now()
	result, err := s.pbftCore.Request(req)
	if err != nil {
		s.log.Error("pbft core request err", "id", req.ID, "err", err)
		return nil, err
	}
	s.recentRounds.Add(result.Subject.Height, result)
	s.log.Debug("pbft core request end", "id", req.ID, "height", result.Subject.Height, "view", result.Subject.View, "state", result.State, "latency", result.TotalLatency, "elapsed", dateutil.PrettyDuration(time.Since(start)))
	return result, nil
}

// Config 实现 pbft.Backend.Config
func (s *Simulator) Config() *pbftProtocol.PBFTConfig {
	return s.config
}

// Validators 实现 pbft.Backend.Validators
func (s *Simulator) Validators() pbftProtocol.ValidatorSet {
	return s.valSet
}

// FaultModel 实现 pbft.Backend.FaultModel
func (s *Simulator) FaultModel() pbftProtocol.FaultModel {
	return s.faults
}

// Recorder 实现 pbft.Backend.Recorder
func (s *Simulator) Recorder() pbftProtocol.MetricsRecorder {
	return s.recorder
}

// Now 实现 pbft.Backend.Now
func (s *Simulator) Now() int64 {
	return s.clock()
}

// Commit 实现 pbft.Backend.Commit
func (s *Simulator) Commit(result *pbftProtocol.RoundResult) error {
	s.log.Debug("Committed", "height", result.Subject.Height, "view", result.Subject.View, "digest", result.Subject.Digest.Hex(), "primary", result.Primary)
	if s.commitHook != nil {
		s.commitHook(result)
	}
	return nil
}

// Summary 汇总统计
func (s *Simulator) Summary() metrics.Summary {
	return s.recorder.Summary()
}
