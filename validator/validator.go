// Package validator
//
// @author: xwc1125
package validator

import pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"

var (
	_ pbftProtocol.Validator = new(defaultValidator)
)

// defaultValidator  pbft.Validator的实现
type defaultValidator struct {
	id      string
	index   int
	profile pbftProtocol.ByzantineProfile
}

func (val *defaultValidator) ID() string {
	return val.id
}

func (val *defaultValidator) Index() int {
	return val.index
}

func (val *defaultValidator) Profile() pbftProtocol.ByzantineProfile {
	return val.profile
}

func (val *defaultValidator) String() string {
	return val.id
}

// entry 验证者集合中的一项，计数只由集合修改
type entry struct {
	val      *defaultValidator
	counters pbftProtocol.Counters
}
