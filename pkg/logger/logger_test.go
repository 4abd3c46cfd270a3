package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Hozymaister/Workshift-sub001/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{"JSON", config.LogConfig{Level: "info", Format: "json"}, false},
		{"控制台", config.LogConfig{Level: "debug", Format: "console"}, false},
		{"非法级别", config.LogConfig{Level: "verbose", Format: "json"}, true},
		{"非法格式", config.LogConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("期望 wantErr=%v，实际: %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if tt.cfg.Level == "debug" && !l.Core().Enabled(zapcore.DebugLevel) {
				t.Error("debug 级别应启用")
			}
			if tt.cfg.Level == "info" && l.Core().Enabled(zapcore.DebugLevel) {
				t.Error("info 级别不应输出 debug")
			}
		})
	}
}
