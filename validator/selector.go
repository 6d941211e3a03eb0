// Package validator
//
// @author: xwc1125
package validator

import pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"

// roundRobinProposer 轮询选举策略：validators[view mod N]
func roundRobinProposer(valSet pbftProtocol.ValidatorSet, view pbftProtocol.View) pbftProtocol.Validator {
	if valSet.Size() == 0 {
		return nil
	}
	pick := view.PrimaryIndex(valSet.Size())
	return valSet.GetByIndex(uint64(pick))
}
