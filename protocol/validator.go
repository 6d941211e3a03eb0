// Package protocol
//
// @author: xwc1125
package protocol

// Validator 验证者
type Validator interface {
	ID() string                // ID 返回验证者标识
	Index() int                // 在验证者集合中的序号
	Profile() ByzantineProfile // 拜占庭属性
	String() string            // 校验者字符串
}

// Counters 验证者的消息计数
type Counters struct {
	PreparesSent     uint64 `json:"preparesSent"`
	PreparesReceived uint64 `json:"preparesReceived"`
	CommitsSent      uint64 `json:"commitsSent"`
	CommitsReceived  uint64 `json:"commitsReceived"`
	Proposals        uint64 `json:"proposals"`
	Failures         uint64 `json:"failures"`
	ViewChangesSent  uint64 `json:"viewChangesSent"`
}

// ValidatorStatus 验证者的只读快照
type ValidatorStatus struct {
	ID       string           `json:"id"`
	Index    int              `json:"index"`
	Profile  ByzantineProfile `json:"profile"`
	Counters Counters         `json:"counters"`
}

// ValidatorSet 验证者集。成员在创建后不可变，计数只能通过Mark*修改
type ValidatorSet interface {
	CalcProposer(view View)    // 根据视图计算primary, 并记录到ValidatorSet, 通过GetProposer查询
	GetProposer() Validator    // 返回当前primary
	IsProposer(id string) bool // 查询指定的id是否为primary

	GetByIndex(index uint64) Validator                  // 通过索引查找validator
	GetById(id string) (index int, validator Validator) // 通过ID查找validator, 并返回其索引
	List() []Validator                                  // 返回 validator 数组
	Size() int                                          // 返回验证者集合的长度

	FaultTolerantNum() int // 容错节点数f
	QuorumSize() int       // 门限2f+1

	Counters(index int) Counters // 计数快照
	Snapshot() []ValidatorStatus // 所有验证者的只读快照

	MarkProposal(index int)              // primary提案数+1
	MarkSent(phase Phase, index int)     // 发送消息数+1
	MarkReceived(phase Phase, count int) // 所有验证者接收消息数+count
	MarkFailure(index int)               // 故障数+1
}

// ProposalSelector primary选举策略
type ProposalSelector func(ValidatorSet, View) Validator
