// Package fault
//
// @author: xwc1125
package fault

import (
	"math/rand"
	"sync"

	"github.com/chain5j/logger"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

var (
	_ pbftProtocol.FaultModel = new(Model)
)

// ProbabilityFunc 验证者在某阶段的故障概率
type ProbabilityFunc func(index int, phase pbftProtocol.Phase) float64

// Model 基于概率的故障模型。相同种子与相同的调用序列产生相同的决策
type Model struct {
	log         logger.Logger
	probability ProbabilityFunc

	randLock sync.Mutex
	rand     *rand.Rand
}

type option func(m *Model)

// WithSeed 使用固定种子
func WithSeed(seed int64) option {
	return func(m *Model) {
		m.rand = rand.New(rand.NewSource(seed))
	}
}

// WithRand 注入随机源
func WithRand(r *rand.Rand) option {
	return func(m *Model) {
		if r != nil {
			m.rand = r
		}
	}
}

// WithProbability 自定义概率
func WithProbability(fn ProbabilityFunc) option {
	return func(m *Model) {
		if fn != nil {
			m.probability = fn
		}
	}
}

// NewModel 根据配置创建故障模型，默认使用配置中的种子
func NewModel(config *pbftProtocol.PBFTConfig, opts ...option) *Model {
	m := &Model{
		log:         logger.New("pbft.fault"),
		probability: config.Probability,
		rand:        rand.New(rand.NewSource(config.Seed)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Decide 决定验证者在某阶段的行为
// 诚实节点总是正常；拜占庭节点以概率p表现出其属性对应的行为
func (m *Model) Decide(val pbftProtocol.Validator, phase pbftProtocol.Phase) pbftProtocol.Behavior {
	profile := val.Profile()
	if profile == pbftProtocol.ProfileNone {
		return pbftProtocol.BehaviorNormal
	}

	p := m.probability(val.Index(), phase)
	if p <= 0 {
		return pbftProtocol.BehaviorNormal
	}

	m.randLock.Lock()
	draw := m.rand.Float64()
	m.randLock.Unlock()

	if draw >= p {
		return pbftProtocol.BehaviorNormal
	}
	behavior := profile.Behavior()
	m.log.Trace("fault triggered", "validator", val.ID(), "phase", phase, "behavior", behavior, "draw", draw, "p", p)
	return behavior
}

// Fixed 固定决策的故障模型，未指定的组合返回Normal
type Fixed map[FixedKey]pbftProtocol.Behavior

// FixedKey 验证者索引与阶段
type FixedKey struct {
	Index int
	Phase pbftProtocol.Phase
}

// Decide 实现 FaultModel.Decide
func (f Fixed) Decide(val pbftProtocol.Validator, phase pbftProtocol.Phase) pbftProtocol.Behavior {
	if b, ok := f[FixedKey{Index: val.Index(), Phase: phase}]; ok {
		return b
	}
	return pbftProtocol.BehaviorNormal
}
