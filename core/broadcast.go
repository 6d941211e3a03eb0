// Package core
//
// @author: xwc1125
package core

import (
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// broadcast 记录阶段广播的网络开销：每个发送者向全部N个验证者各发送一条消息
func (c *core) broadcast(phase pbftProtocol.Phase, senders int) pbftProtocol.NetworkMessage {
	if senders < 0 {
		senders = 0
	}
	count := uint64(senders) * uint64(c.valSet.Size())
	size := c.config.MessageSize(phase)
	msg := pbftProtocol.NetworkMessage{
		BlockHeight:  c.Height(),
		View:         c.CurrentView(),
		Phase:        phase,
		MessageCount: count,
		MessageSize:  size,
		TotalBytes:   count * size,
	}
	c.metrics.RecordNetwork(msg)
	c.log.Trace("broadcast phase messages", "phase", phase, "senders", senders, "messages", count, "bytes", msg.TotalBytes)
	return msg
}
