// Package pbft
//
// @author: xwc1125
package pbft

import (
	"github.com/chain5j/chain5j-pkg/codec/json"
	"github.com/chain5j/chain5j-pkg/database/kvstore"
	"github.com/chain5j/logger"
)

const (
	dbKeyReportPrefix = "pbft-report" // 运行报告key前缀
)

func reportKey(runID string) []byte {
	return append([]byte(dbKeyReportPrefix), runID...)
}

// LoadReport 从数据库中加载运行报告
func LoadReport(db kvstore.Database, runID string) (*Report, error) {
	if db == nil {
		return nil, errNoKVDB
	}
	if runID == "" {
		return nil, errEmptyRunID
	}
	key := reportKey(runID)
	if ok, err := db.Has(key); err != nil {
		return nil, err
	} else if !ok {
		return nil, errUnknownReport
	}
	blob, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	logger.Trace("load report blob by run id", "runId", runID, "size", len(blob))

	report := new(Report)
	if err := json.Unmarshal(blob, report); err != nil {
		return nil, err
	}
	report.RunID = runID
	return report, nil
}

// Store 保存运行报告
func (r *Report) Store(db kvstore.Database) error {
	if db == nil {
		return errNoKVDB
	}
	if r.RunID == "" {
		return errEmptyRunID
	}
	blob, err := json.Marshal(r)
	if err != nil {
		return err
	}
	logger.Trace("store report blob to db", "runId", r.RunID, "size", len(blob))
	return db.Put(reportKey(r.RunID), blob)
}

// StoreReport 将当前报告保存到WithKVDB配置的数据库
func (s *Simulator) StoreReport() error {
	return s.Report().Store(s.db)
}
