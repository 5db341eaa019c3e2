package service

import (
	"go.uber.org/zap"
)

// Result is the outcome of one best-effort side effect, such as a staffing request or
// a single table hold. Callers aggregate and log results instead of failing on them.
type Result struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Detail any    `json:"detail,omitempty"`
}

func succeeded(op, target string, detail any) Result {
	return Result{Op: op, Target: target, OK: true, Detail: detail}
}

func failed(op, target string, err error) Result {
	return Result{Op: op, Target: target, Error: err.Error()}
}

// LogResults writes one line per result; failures log at warn.
func LogResults(logger *zap.Logger, results ...Result) {
	if logger == nil {
		return
	}
	for _, r := range results {
		fields := []zap.Field{zap.String("op", r.Op), zap.String("target", r.Target)}
		if r.OK {
			logger.Info("side effect applied", fields...)
			continue
		}
		logger.Warn("side effect failed", append(fields, zap.String("error", r.Error))...)
	}
}
