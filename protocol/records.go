// Package protocol
//
// @author: xwc1125
package protocol

// 以下记录均为只追加的日志条目，创建后不再修改。时长单位为毫秒

// PhaseRecord 一次阶段尝试
type PhaseRecord struct {
	BlockHeight      uint64 `json:"blockHeight"`
	View             View   `json:"view"`
	Phase            Phase  `json:"phase"`
	Duration         int64  `json:"duration"`
	MessageCount     uint64 `json:"messageCount"`
	ParticipantCount int    `json:"participantCount"`
	ByzantineCount   int    `json:"byzantineCount"`
}

// NetworkMessage 阶段的网络消息开销
type NetworkMessage struct {
	BlockHeight  uint64 `json:"blockHeight"`
	View         View   `json:"view"`
	Phase        Phase  `json:"phase"`
	MessageCount uint64 `json:"messageCount"`
	MessageSize  uint64 `json:"messageSize"`
	TotalBytes   uint64 `json:"totalBytes"`
}

// ByzantineEvent 被触发的故障
type ByzantineEvent struct {
	Timestamp      int64    `json:"timestamp"`
	Validator      string   `json:"validator"`
	ValidatorIndex int      `json:"validatorIndex"`
	BlockHeight    uint64   `json:"blockHeight"`
	View           View     `json:"view"`
	Phase          Phase    `json:"phase"`
	FailureType    Behavior `json:"failureType"`
}

// ViewChangeRecord 一次视图轮换
type ViewChangeRecord struct {
	Timestamp    int64  `json:"timestamp"`
	OldView      View   `json:"oldView"`
	NewView      View   `json:"newView"`
	Reason       string `json:"reason"`
	Duration     int64  `json:"duration"`
	MessageCount uint64 `json:"messageCount"`
	NewPrimary   string `json:"newPrimary"`
}

// PhaseTimingsRecord 各阶段耗时
type PhaseTimingsRecord struct {
	PrePrepare int64 `json:"prePrepare"`
	Prepare    int64 `json:"prepare"`
	Commit     int64 `json:"commit"`
}

// BlockRecord 一轮共识的汇总
type BlockRecord struct {
	BlockHeight  uint64             `json:"blockHeight"`
	View         View               `json:"view"`
	Primary      string             `json:"primary"`
	PhaseTimings PhaseTimingsRecord `json:"phaseTimings"`
	TotalTime    int64              `json:"totalTime"`
	Success      bool               `json:"success"`
	Error        string             `json:"error,omitempty"`
}

// FinalityRecord 已提交工作项的最终性时间
type FinalityRecord struct {
	TxHash          string `json:"txHash"`
	TransactionType string `json:"transactionType"`
	FinalityTime    int64  `json:"finalityTime"`
	Timestamp       int64  `json:"timestamp"`
}
