// Package pbft
//
// @author: xwc1125
package pbft

import (
	"fmt"

	"github.com/chain5j/chain5j-pkg/database/kvstore"
	"github.com/chain5j/logger"
	"github.com/prometheus/client_golang/prometheus"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

type option func(f *Simulator) error

func apply(f *Simulator, opts ...option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(f); err != nil {
			return fmt.Errorf("option apply err:%v", err)
		}
	}
	return nil
}

func WithConfig(config *pbftProtocol.PBFTConfig) option {
	return func(f *Simulator) error {
		if config == nil {
			return fmt.Errorf("%w: nil config", pbftProtocol.ErrInvalidConfig)
		}
		f.config = config.Copy()
		return nil
	}
}

func WithKVDB(db kvstore.Database) option {
	return func(f *Simulator) error {
		f.db = db
		return nil
	}
}

// WithFaultModel 替换默认的概率故障模型
func WithFaultModel(faults pbftProtocol.FaultModel) option {
	return func(f *Simulator) error {
		f.faults = faults
		return nil
	}
}

// WithClock 时间戳来源，返回毫秒
func WithClock(clock func() int64) option {
	return func(f *Simulator) error {
		f.clock = clock
		return nil
	}
}

// WithSleeper Realtime模式下的挂起方式
func WithSleeper(sleeper pbftProtocol.Sleeper) option {
	return func(f *Simulator) error {
		f.sleeper = sleeper
		return nil
	}
}

// WithRegisterer 注册prometheus指标
func WithRegisterer(reg prometheus.Registerer) option {
	return func(f *Simulator) error {
		f.registerer = reg
		return nil
	}
}

func WithRunID(runID string) option {
	return func(f *Simulator) error {
		f.runID = runID
		return nil
	}
}

// WithCommitHook 每个提交的轮次都会回调
func WithCommitHook(hook func(*pbftProtocol.RoundResult)) option {
	return func(f *Simulator) error {
		f.commitHook = hook
		return nil
	}
}

func WithLogger(log logger.Logger) option {
	return func(f *Simulator) error {
		f.log = log
		return nil
	}
}
