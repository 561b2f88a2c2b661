// SPDX-License-Identifier: EPL-2.0

// Package config loads the audtransport YAML configuration.
//
//	engine:
//	  sample_rate: 48000
//	  buffer_ms: 100
//	analysis:
//	  window_size: 2048
//	  smoothing: 0.5
//	logging:
//	  level: debug
//	  format: json
package config
