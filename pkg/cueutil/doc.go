// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// turns CUE errors into messages that name the offending field:
//
//	config.cue: report.low_stock_ratio: invalid value 2 (out of bound <=1)
package cueutil
