// Package core
//
// @author: xwc1125
package core

import (
	"sync"

	"github.com/chain5j/logger"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
	"go.uber.org/atomic"
)

var (
	_ pbftProtocol.PBFTEngine = new(core)
)

type core struct {
	log     logger.Logger
	backend pbftProtocol.PBFTBackend
	config  *pbftProtocol.PBFTConfig
	valSet  pbftProtocol.ValidatorSet
	faults  pbftProtocol.FaultModel
	metrics pbftProtocol.MetricsRecorder
	sleeper pbftProtocol.Sleeper // 为nil时使用计时器

	view   atomic.Uint64 // 当前视图，只由视图轮换修改
	height atomic.Uint64 // 最新处理的高度

	started      atomic.Bool // 引擎是否已启动
	inFlight     atomic.Bool // 是否有正在处理的轮次
	viewChanging atomic.Bool // 视图轮换是否正在进行

	currentRoundState *roundState // 当前轮次状态

	quitLock sync.Mutex
	quitCh   chan struct{}
}

// NewEngine 创建pbft 引擎。sleeper仅在Realtime模式下使用，为nil时使用计时器挂起
func NewEngine(backend pbftProtocol.PBFTBackend, sleeper pbftProtocol.Sleeper) pbftProtocol.PBFTEngine {
	c := &core{
		log:     logger.New("pbft.core"),
		backend: backend,
		config:  backend.Config(),
		valSet:  backend.Validators(),
		faults:  backend.FaultModel(),
		metrics: backend.Recorder(),
		sleeper: sleeper,
		quitCh:  make(chan struct{}),
	}
	return c
}

// Start 实现 core.Engine.Start
func (c *core) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return pbftProtocol.ErrStartedEngine
	}
	c.quitLock.Lock()
	c.quitCh = make(chan struct{})
	c.quitLock.Unlock()

	view := c.CurrentView()
	c.valSet.CalcProposer(view)
	c.log.Debug("pbft engine started", "view", view, "height", c.Height(), "primary", c.valSet.GetProposer(), "size", c.valSet.Size(), "f", c.valSet.FaultTolerantNum())
	return nil
}

// Stop 实现 core.Engine.Stop。正在挂起的阶段会被中断
func (c *core) Stop() error {
	if !c.started.CompareAndSwap(true, false) {
		return pbftProtocol.ErrStoppedEngine
	}
	c.quitLock.Lock()
	close(c.quitCh)
	c.quitLock.Unlock()

	c.log.Debug("pbft engine stopped", "view", c.CurrentView(), "height", c.Height())
	return nil
}

// CurrentView 当前视图
func (c *core) CurrentView() pbftProtocol.View {
	return pbftProtocol.View(c.view.Load())
}

// Height 已处理的最新高度
func (c *core) Height() uint64 {
	return c.height.Load()
}

// isProposer 判断验证者是否为当前primary
func (c *core) isProposer(val pbftProtocol.Validator) bool {
	return c.valSet.IsProposer(val.ID())
}
