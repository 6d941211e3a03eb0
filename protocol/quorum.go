// Package protocol
//
// @author: xwc1125
package protocol

// QuorumCertificate 阶段门限的计算结果，仅在阶段内使用
type QuorumCertificate struct {
	Phase        Phase // 阶段
	Participants int   // 参与者个数
	Required     int   // 门限 2f+1
}

// Agreed 是否达成一致
func (qc QuorumCertificate) Agreed() bool {
	return qc.Participants >= qc.Required
}

// Err 未达成一致时返回QuorumError
func (qc QuorumCertificate) Err() error {
	if qc.Agreed() {
		return nil
	}
	return &QuorumError{Phase: qc.Phase, Count: qc.Participants, Required: qc.Required}
}

// QuorumSize 门限 2f+1
func QuorumSize(f int) int {
	if f < 0 {
		f = 0
	}
	return 2*f + 1
}

// FaultTolerantNum 容错节点数 f=⌊(N-1)/3⌋
func FaultTolerantNum(size int) int {
	if size <= 0 {
		return 0
	}
	return (size - 1) / 3
}

// Evaluate 判断阶段是否达成一致：participants >= 2f+1
func Evaluate(phase Phase, participants, f int) QuorumCertificate {
	return QuorumCertificate{
		Phase:        phase,
		Participants: participants,
		Required:     QuorumSize(f),
	}
}
