// Package protocol
//
// @author: xwc1125
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStoppedEngine          = errors.New("stopped engine")                          // 共识已停止
	ErrStartedEngine          = errors.New("started engine")                          // 共识已经启动，再次启动时会报错
	ErrRoundInFlight          = errors.New("round already in flight")                 // 上一轮尚未结束
	ErrInvalidConfig          = errors.New("invalid pbft config")                     // 配置错误
	ErrInsufficientValidators = errors.New("insufficient validator identities")       // 验证者身份不足N个
	ErrUnknownValidator       = errors.New("unknown validator")                       // 未知验证者
	ErrPrimaryFault           = errors.New("primary crashed during pre-prepare phase") // primary在pre-prepare阶段宕机
	ErrQuorumNotReached       = errors.New("quorum not reached")                      // 未达到2f+1
)

// QuorumError 阶段未达到门限
type QuorumError struct {
	Phase    Phase
	Count    int
	Required int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("insufficient %s messages: %d/%d", strings.ToLower(e.Phase.String()), e.Count, e.Required)
}

// Is 使errors.Is(err, ErrQuorumNotReached)成立
func (e *QuorumError) Is(target error) bool {
	return target == ErrQuorumNotReached
}
