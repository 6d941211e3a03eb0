// Package validator
//
// @author: xwc1125
package validator

import (
	"fmt"
	"math"
	"sync"

	"github.com/chain5j/logger"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

var (
	_ pbftProtocol.ValidatorSet = new(defaultValidatorSet)
)

// defaultValidatorSet  pbft.ValidatorSet的实现
// 验证者以数组形式保存，索引即序号；成员创建后不可变
type defaultValidatorSet struct {
	log           logger.Logger
	proposer      pbftProtocol.Validator // 当前primary
	entries       []*entry               // 验证者集合
	byId          map[string]int         // id-->索引
	validatorLock sync.RWMutex

	selector pbftProtocol.ProposalSelector // primary选举策略
}

// NewSet 创建新的ValidatorSet。profiles为nil时全部为诚实节点
// 参数不合法时返回错误，不会创建部分初始化的集合
func NewSet(ids []string, profiles []pbftProtocol.ByzantineProfile) (pbftProtocol.ValidatorSet, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty validator set", pbftProtocol.ErrInsufficientValidators)
	}
	if profiles != nil && len(profiles) != len(ids) {
		return nil, fmt.Errorf("%w: %d profiles for %d validators", pbftProtocol.ErrInvalidConfig, len(profiles), len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%w: empty identity at index %d", pbftProtocol.ErrInvalidConfig, i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: duplicate identity %s", pbftProtocol.ErrInvalidConfig, id)
		}
		seen[id] = struct{}{}
	}
	return newDefaultSet(ids, profiles), nil
}

// newDefaultSet 创建Validator集合，调用方需保证参数合法
func newDefaultSet(ids []string, profiles []pbftProtocol.ByzantineProfile) *defaultValidatorSet {
	valSet := &defaultValidatorSet{
		log:  logger.New("pbft.valSet"),
		byId: make(map[string]int, len(ids)),
	}

	// 初始化验证者集合
	valSet.entries = make([]*entry, len(ids))
	for i, id := range ids {
		profile := pbftProtocol.ProfileNone
		if profiles != nil {
			profile = profiles[i]
		}
		valSet.entries[i] = &entry{
			val: &defaultValidator{
				id:      id,
				index:   i,
				profile: profile,
			},
		}
		valSet.byId[id] = i
	}

	valSet.selector = roundRobinProposer

	// 初始化proposer,默认选择第一个
	if valSet.Size() > 0 {
		valSet.proposer = valSet.GetByIndex(0)
	}

	return valSet
}

// Size 获取验证者数量
func (vs *defaultValidatorSet) Size() int {
	return len(vs.entries)
}

// List 获取验证者列表
func (vs *defaultValidatorSet) List() []pbftProtocol.Validator {
	list := make([]pbftProtocol.Validator, len(vs.entries))
	for i, e := range vs.entries {
		list[i] = e.val
	}
	return list
}

// GetByIndex 根据索引获取验证者
func (vs *defaultValidatorSet) GetByIndex(i uint64) pbftProtocol.Validator {
	if i < uint64(vs.Size()) {
		return vs.entries[i].val
	}
	return nil
}

// GetById 根据id获取验证器
func (vs *defaultValidatorSet) GetById(id string) (int, pbftProtocol.Validator) {
	if i, ok := vs.byId[id]; ok {
		return i, vs.entries[i].val
	}
	vs.log.Debug("get validator empty", "id", id)
	return -1, nil
}

// GetProposer 获取当前primary
func (vs *defaultValidatorSet) GetProposer() pbftProtocol.Validator {
	vs.validatorLock.RLock()
	defer vs.validatorLock.RUnlock()
	return vs.proposer
}

// IsProposer 判断id是否为primary
func (vs *defaultValidatorSet) IsProposer(id string) bool {
	_, val := vs.GetById(id)
	if val == nil {
		return false
	}
	return vs.GetProposer() == val
}

// CalcProposer 根据视图计算primary, 并记录到ValidatorSet, 通过GetProposer查询
func (vs *defaultValidatorSet) CalcProposer(view pbftProtocol.View) {
	proposer := vs.selector(vs, view)
	vs.validatorLock.Lock()
	defer vs.validatorLock.Unlock()
	vs.proposer = proposer
}

// FaultTolerantNum 容错节点数
func (vs *defaultValidatorSet) FaultTolerantNum() int {
	f := int(math.Ceil(float64(vs.Size())/3)) - 1
	if f < 0 {
		return 0
	}
	return f
}

// QuorumSize 门限 2f+1
func (vs *defaultValidatorSet) QuorumSize() int {
	return pbftProtocol.QuorumSize(vs.FaultTolerantNum())
}

// Counters 获取验证者计数的快照
func (vs *defaultValidatorSet) Counters(index int) pbftProtocol.Counters {
	if index < 0 || index >= vs.Size() {
		return pbftProtocol.Counters{}
	}
	vs.validatorLock.RLock()
	defer vs.validatorLock.RUnlock()
	return vs.entries[index].counters
}

// Snapshot 所有验证者的只读快照
func (vs *defaultValidatorSet) Snapshot() []pbftProtocol.ValidatorStatus {
	vs.validatorLock.RLock()
	defer vs.validatorLock.RUnlock()

	statuses := make([]pbftProtocol.ValidatorStatus, len(vs.entries))
	for i, e := range vs.entries {
		statuses[i] = pbftProtocol.ValidatorStatus{
			ID:       e.val.id,
			Index:    e.val.index,
			Profile:  e.val.profile,
			Counters: e.counters,
		}
	}
	return statuses
}

// MarkProposal primary提案数+1
func (vs *defaultValidatorSet) MarkProposal(index int) {
	vs.update(index, func(c *pbftProtocol.Counters) { c.Proposals++ })
}

// MarkSent 验证者在阶段内发送消息
func (vs *defaultValidatorSet) MarkSent(phase pbftProtocol.Phase, index int) {
	vs.update(index, func(c *pbftProtocol.Counters) {
		switch phase {
		case pbftProtocol.PhasePrepare:
			c.PreparesSent++
		case pbftProtocol.PhaseCommit:
			c.CommitsSent++
		case pbftProtocol.PhaseViewChange:
			c.ViewChangesSent++
		}
	})
}

// MarkReceived 广播后每个验证者都收到count条消息
func (vs *defaultValidatorSet) MarkReceived(phase pbftProtocol.Phase, count int) {
	if count <= 0 {
		return
	}
	for i := range vs.entries {
		vs.update(i, func(c *pbftProtocol.Counters) {
			switch phase {
			case pbftProtocol.PhasePrepare:
				c.PreparesReceived += uint64(count)
			case pbftProtocol.PhaseCommit:
				c.CommitsReceived += uint64(count)
			}
		})
	}
}

// MarkFailure 故障数+1
func (vs *defaultValidatorSet) MarkFailure(index int) {
	vs.update(index, func(c *pbftProtocol.Counters) { c.Failures++ })
}

func (vs *defaultValidatorSet) update(index int, fn func(c *pbftProtocol.Counters)) {
	if index < 0 || index >= vs.Size() {
		vs.log.Warn("update counters of unknown validator", "index", index)
		return
	}
	vs.validatorLock.Lock()
	defer vs.validatorLock.Unlock()
	fn(&vs.entries[index].counters)
}
