// Package protocol
//
// @author: xwc1125
package protocol

import (
	"fmt"
	"time"
)

const (
	DefaultValidatorCount     = 4
	DefaultByzantineCount     = 1
	DefaultFailureProbability = 0.3
	DefaultSeed               = int64(1)
)

// PBFTConfig pbft模拟的配置。时间单位均为毫秒
type PBFTConfig struct {
	ValidatorCount    int                `json:"validatorCount" mapstructure:"validator_count"`       // 验证者个数N
	ByzantineCount    int                `json:"byzantineValidatorCount" mapstructure:"byzantine"`    // 拜占庭验证者个数
	ByzantineProfiles []ByzantineProfile `json:"byzantineProfiles" mapstructure:"byzantine_profiles"` // 拜占庭属性，循环分配
	Validators        []string           `json:"validators" mapstructure:"validators"`                // 验证者身份，为空时自动生成

	PrePrepareTimeout uint64 `json:"prePrepare" mapstructure:"pre_prepare"`     // pre-prepare阶段时长
	PrepareTimeout    uint64 `json:"prepare" mapstructure:"prepare"`            // prepare阶段时长
	CommitTimeout     uint64 `json:"commit" mapstructure:"commit"`              // commit阶段时长
	ViewChangeTimeout uint64 `json:"viewChange" mapstructure:"view_change"`     // 视图轮换等待时长
	DelayPenalty      uint64 `json:"delayPenalty" mapstructure:"delay_penalty"` // 延迟节点带来的额外时长

	FailureProbability          float64           `json:"failureProbability" mapstructure:"failure_probability"`                   // 默认故障概率
	PhaseFailureProbability     map[Phase]float64 `json:"phaseFailureProbability" mapstructure:"phase_failure_probability"`         // 按阶段覆盖
	ValidatorFailureProbability map[int]float64   `json:"validatorFailureProbability" mapstructure:"validator_failure_probability"` // 按验证者索引覆盖

	PrePrepareMessageSize uint64 `json:"prePrepareMessageSize" mapstructure:"pre_prepare_message_size"` // 字节
	PrepareMessageSize    uint64 `json:"prepareMessageSize" mapstructure:"prepare_message_size"`
	CommitMessageSize     uint64 `json:"commitMessageSize" mapstructure:"commit_message_size"`
	ViewChangeMessageSize uint64 `json:"viewChangeMessageSize" mapstructure:"view_change_message_size"`

	Seed     int64 `json:"seed" mapstructure:"seed"`         // 故障模型随机种子
	Realtime bool  `json:"realtime" mapstructure:"realtime"` // 是否真实挂起等待阶段时长
}

// DefaultConfig 默认配置
func DefaultConfig() *PBFTConfig {
	return &PBFTConfig{
		ValidatorCount:        DefaultValidatorCount,
		ByzantineCount:        DefaultByzantineCount,
		ByzantineProfiles:     []ByzantineProfile{ProfileCrash, ProfileMalicious, ProfileDelayed},
		PrePrepareTimeout:     200,
		PrepareTimeout:        300,
		CommitTimeout:         300,
		ViewChangeTimeout:     1000,
		DelayPenalty:          100,
		FailureProbability:    DefaultFailureProbability,
		PrePrepareMessageSize: 1024,
		PrepareMessageSize:    256,
		CommitMessageSize:     256,
		ViewChangeMessageSize: 512,
		Seed:                  DefaultSeed,
	}
}

// ValidateBasic 基本的配置校验
func (c *PBFTConfig) ValidateBasic() error {
	if c.ValidatorCount < 1 {
		return fmt.Errorf("%w: validator count %d", ErrInvalidConfig, c.ValidatorCount)
	}
	if c.ByzantineCount < 0 || c.ByzantineCount > c.ValidatorCount {
		return fmt.Errorf("%w: byzantine count %d out of [0, %d]", ErrInvalidConfig, c.ByzantineCount, c.ValidatorCount)
	}
	if c.ByzantineCount > 0 && len(c.ByzantineProfiles) == 0 {
		return fmt.Errorf("%w: byzantine validators without profiles", ErrInvalidConfig)
	}
	if len(c.Validators) > 0 && len(c.Validators) < c.ValidatorCount {
		return fmt.Errorf("%w: have %d identities, need %d", ErrInsufficientValidators, len(c.Validators), c.ValidatorCount)
	}
	if err := checkProbability("failure probability", c.FailureProbability); err != nil {
		return err
	}
	for phase, p := range c.PhaseFailureProbability {
		if err := checkProbability(phase.String(), p); err != nil {
			return err
		}
	}
	for idx, p := range c.ValidatorFailureProbability {
		if idx < 0 || idx >= c.ValidatorCount {
			return fmt.Errorf("%w: validator index %d out of range", ErrInvalidConfig, idx)
		}
		if err := checkProbability(fmt.Sprintf("validator %d", idx), p); err != nil {
			return err
		}
	}
	return nil
}

func checkProbability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: %s %v not in [0, 1]", ErrInvalidConfig, name, p)
	}
	return nil
}

// Profiles 每个验证者的拜占庭属性。最后ByzantineCount个验证者按ByzantineProfiles循环分配
func (c *PBFTConfig) Profiles() []ByzantineProfile {
	profiles := make([]ByzantineProfile, c.ValidatorCount)
	if c.ByzantineCount <= 0 || len(c.ByzantineProfiles) == 0 {
		return profiles
	}
	first := c.ValidatorCount - c.ByzantineCount
	for i := first; i < c.ValidatorCount; i++ {
		profiles[i] = c.ByzantineProfiles[(i-first)%len(c.ByzantineProfiles)]
	}
	return profiles
}

// PhaseDuration 阶段的基础时长
func (c *PBFTConfig) PhaseDuration(phase Phase) time.Duration {
	switch phase {
	case PhasePrePrepare:
		return time.Duration(c.PrePrepareTimeout) * time.Millisecond
	case PhasePrepare:
		return time.Duration(c.PrepareTimeout) * time.Millisecond
	case PhaseCommit:
		return time.Duration(c.CommitTimeout) * time.Millisecond
	case PhaseViewChange:
		return time.Duration(c.ViewChangeTimeout) * time.Millisecond
	}
	return 0
}

// DelayPenaltyDuration 延迟惩罚时长
func (c *PBFTConfig) DelayPenaltyDuration() time.Duration {
	return time.Duration(c.DelayPenalty) * time.Millisecond
}

// MessageSize 阶段的单条消息大小
func (c *PBFTConfig) MessageSize(phase Phase) uint64 {
	switch phase {
	case PhasePrePrepare:
		return c.PrePrepareMessageSize
	case PhasePrepare:
		return c.PrepareMessageSize
	case PhaseCommit:
		return c.CommitMessageSize
	case PhaseViewChange:
		return c.ViewChangeMessageSize
	}
	return 0
}

// Probability 验证者在某阶段的故障概率：验证者覆盖 > 阶段覆盖 > 默认值
func (c *PBFTConfig) Probability(index int, phase Phase) float64 {
	if p, ok := c.ValidatorFailureProbability[index]; ok {
		return p
	}
	if p, ok := c.PhaseFailureProbability[phase]; ok {
		return p
	}
	return c.FailureProbability
}

// Copy 深拷贝配置
func (c *PBFTConfig) Copy() *PBFTConfig {
	cpy := *c
	cpy.ByzantineProfiles = append([]ByzantineProfile(nil), c.ByzantineProfiles...)
	cpy.Validators = append([]string(nil), c.Validators...)
	if c.PhaseFailureProbability != nil {
		cpy.PhaseFailureProbability = make(map[Phase]float64, len(c.PhaseFailureProbability))
		for k, v := range c.PhaseFailureProbability {
			cpy.PhaseFailureProbability[k] = v
		}
	}
	if c.ValidatorFailureProbability != nil {
		cpy.ValidatorFailureProbability = make(map[int]float64, len(c.ValidatorFailureProbability))
		for k, v := range c.ValidatorFailureProbability {
			cpy.ValidatorFailureProbability[k] = v
		}
	}
	return &cpy
}
