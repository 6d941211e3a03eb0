// Package core
//
// @author: xwc1125
package core

import "errors"

var (
	errInvalidRequest = errors.New("invalid request") // 无效请求
	errNoPrimary      = errors.New("no primary")      // 当前视图没有primary
)
