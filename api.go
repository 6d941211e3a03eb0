// Package pbft
//
// @author: xwc1125
package pbft

import (
	"github.com/xaviwho/poa-pow-sims/metrics"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

// API 模拟器的只读查询接口
type API struct {
	s *Simulator
}

// APIs 返回查询接口
func (s *Simulator) APIs() *API {
	return &API{s: s}
}

// GetRound 查询最近的轮次结果
func (api *API) GetRound(height uint64) (*pbftProtocol.RoundResult, error) {
	if v, ok := api.s.recentRounds.Get(height); ok {
		return v.(*pbftProtocol.RoundResult), nil
	}
	return nil, errUnknownRound
}

// GetBlock 查询某高度的区块记录
func (api *API) GetBlock(height uint64) (*pbftProtocol.BlockRecord, error) {
	block, ok := api.s.recorder.Block(height)
	if !ok {
		return nil, errUnknownRound
	}
	return &block, nil
}

// GetValidators 验证者及其计数的快照
func (api *API) GetValidators() []pbftProtocol.ValidatorStatus {
	return api.s.valSet.Snapshot()
}

// GetView 当前视图
func (api *API) GetView() pbftProtocol.View {
	return api.s.pbftCore.CurrentView()
}

// GetPrimary 当前视图的primary
func (api *API) GetPrimary() string {
	view := api.s.pbftCore.CurrentView()
	return api.s.valSet.GetByIndex(uint64(view.PrimaryIndex(api.s.valSet.Size()))).ID()
}

func (api *API) GetReport() *Report {
	return api.s.Report()
}

func (api *API) GetSummary() metrics.Summary {
	return api.s.Summary()
}
