// Package protocol
//
// @author: xwc1125
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chain5j/chain5j-pkg/types"
)

// View 视图编号。决定当前的primary，只增不减
type View uint64

// PrimaryIndex 视图对应的primary索引：view mod N
func (v View) PrimaryIndex(size int) int {
	if size <= 0 {
		return -1
	}
	return int(uint64(v) % uint64(size))
}

// Next 下一个视图
func (v View) Next() View {
	return v + 1
}

func (v View) Cmp(y View) int {
	switch {
	case v < y:
		return -1
	case v > y:
		return 1
	}
	return 0
}

// Subject 一轮共识的主题
type Subject struct {
	Height uint64     // 区块高度
	View   View       // 视图
	Digest types.Hash // 工作项摘要
}

func (s *Subject) String() string {
	return fmt.Sprintf("{Height: %d, View: %d, Digest: %v}", s.Height, s.View, s.Digest.Hex())
}

// Phase 共识阶段
type Phase uint64

const (
	PhasePrePrepare Phase = iota // 预准备
	PhasePrepare                 // 准备
	PhaseCommit                  // 确认
	PhaseViewChange              // 视图轮换（伪阶段）
)

var phaseNames = map[Phase]string{
	PhasePrePrepare: "PRE_PREPARE",
	PhasePrepare:    "PREPARE",
	PhaseCommit:     "COMMIT",
	PhaseViewChange: "VIEW_CHANGE",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE(%d)", uint64(p))
}

// MarshalText 阶段按名称序列化
func (p Phase) MarshalText() ([]byte, error) {
	if _, ok := phaseNames[p]; !ok {
		return nil, fmt.Errorf("unknown phase: %d", uint64(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 按名称解析阶段，大小写不敏感
func (p *Phase) UnmarshalText(text []byte) error {
	for k, name := range phaseNames {
		if strings.EqualFold(name, string(text)) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", string(text))
}

func (p Phase) MarshalJSON() ([]byte, error) {
	text, err := p.MarshalText()
	if err != nil {
		return nil, err
	}
	return strconv.AppendQuote(nil, string(text)), nil
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	text, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid phase: %s", data)
	}
	return p.UnmarshalText([]byte(text))
}

// State 一轮共识的状态
type State uint64

const (
	StatePrePrepare State = iota // 预准备
	StatePrepare                 // 准备
	StateCommit                  // 确认
	StateCommitted               // 已提交（终态）
	StateFailed                  // 失败（终态）
)

func (s State) Cmp(y State) int {
	if uint64(s) < uint64(y) {
		return -1
	}
	if uint64(s) > uint64(y) {
		return 1
	}
	return 0
}

func (s State) String() string {
	switch s {
	case StatePrePrepare:
		return "PRE_PREPARE"
	case StatePrepare:
		return "PREPARE"
	case StateCommit:
		return "COMMIT"
	case StateCommitted:
		return "COMMITTED"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("STATE(%d)", uint64(s))
}

// Behavior 故障模型对某个验证者在某阶段给出的行为
type Behavior uint8

const (
	BehaviorNormal    Behavior = iota // 正常
	BehaviorCrash                     // 宕机，不发送消息
	BehaviorMalicious                 // 作恶，消息仍计入
	BehaviorDelayed                   // 延迟，消息计入但增加时延
)

func (b Behavior) String() string {
	switch b {
	case BehaviorNormal:
		return "normal"
	case BehaviorCrash:
		return "crash"
	case BehaviorMalicious:
		return "malicious"
	case BehaviorDelayed:
		return "delayed"
	}
	return fmt.Sprintf("behavior(%d)", uint8(b))
}

func (b Behavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b Behavior) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, b.String()), nil
}

func (b *Behavior) UnmarshalJSON(data []byte) error {
	text, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid behavior: %s", data)
	}
	for k := BehaviorNormal; k <= BehaviorDelayed; k++ {
		if strings.EqualFold(k.String(), text) {
			*b = k
			return nil
		}
	}
	return fmt.Errorf("unknown behavior: %q", text)
}

// Faulty 是否为故障行为
func (b Behavior) Faulty() bool {
	return b != BehaviorNormal
}

// Counted 该行为下验证者的消息是否计入参与数
func (b Behavior) Counted() bool {
	return b != BehaviorCrash
}

// ByzantineProfile 验证者的拜占庭属性
type ByzantineProfile uint16

const (
	ProfileNone      ByzantineProfile = iota // 诚实节点
	ProfileCrash                             // 可能宕机
	ProfileMalicious                         // 可能作恶
	ProfileDelayed                           // 可能延迟
)

var profileNames = map[ByzantineProfile]string{
	ProfileNone:      "none",
	ProfileCrash:     "crash",
	ProfileMalicious: "malicious",
	ProfileDelayed:   "delayed",
}

func (p ByzantineProfile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return fmt.Sprintf("profile(%d)", uint16(p))
}

func (p ByzantineProfile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *ByzantineProfile) UnmarshalText(text []byte) error {
	for k, name := range profileNames {
		if strings.EqualFold(name, string(text)) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown byzantine profile: %q", string(text))
}

func (p ByzantineProfile) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, p.String()), nil
}

func (p *ByzantineProfile) UnmarshalJSON(data []byte) error {
	text, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid byzantine profile: %s", data)
	}
	return p.UnmarshalText([]byte(text))
}

// Behavior 属性被触发时对应的行为
func (p ByzantineProfile) Behavior() Behavior {
	switch p {
	case ProfileCrash:
		return BehaviorCrash
	case ProfileMalicious:
		return BehaviorMalicious
	case ProfileDelayed:
		return BehaviorDelayed
	}
	return BehaviorNormal
}

// Request 工作项请求。Payload 对共识透明，不做解析
type Request struct {
	ID      string     // 工作项标识
	Type    string     // 交易类型，仅透传到finality记录
	Payload []byte     // 不透明负载
	Digest  types.Hash // 负载摘要，由引擎计算
}

// PhaseTimings 各阶段耗时
type PhaseTimings struct {
	PrePrepare time.Duration
	Prepare    time.Duration
	Commit     time.Duration
}

// Total 阶段耗时之和
func (t PhaseTimings) Total() time.Duration {
	return t.PrePrepare + t.Prepare + t.Commit
}

// RoundResult 一轮共识的结果
type RoundResult struct {
	Subject      *Subject          // 高度、视图及摘要
	Primary      string            // 本轮primary
	State        State             // StateCommitted 或 StateFailed
	Timings      PhaseTimings      // 各阶段耗时
	TotalLatency time.Duration     // 成功时为三阶段之和
	Err          error             // 失败原因
	ViewChange   *ViewChangeRecord // 失败后触发的视图轮换
}

// Committed 是否已提交
func (r *RoundResult) Committed() bool {
	return r != nil && r.State == StateCommitted
}

// Reason 失败原因
func (r *RoundResult) Reason() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
