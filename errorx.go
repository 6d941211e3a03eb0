// Package pbft
//
// @author: xwc1125
package pbft

import "errors"

var (
	errUnknownRound   = errors.New("unknown round")             // 未知轮次
	errUnknownReport  = errors.New("unknown report")            // 未知报告
	errNoKVDB         = errors.New("no kv database")            // 未配置数据库
	errEmptyRunID     = errors.New("empty run id")              // 运行标识为空
	errInvalidEcho    = errors.New("invalid pass-through data") // 透传数据不是合法json
	errInvalidRequest = errors.New("invalid request")           // 工作项为空或缺少标识
	errQueueFull      = errors.New("pending queue full")        // 待处理队列已满
)
