// Package glog has small helpers for consistent structured logging.
package glog

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gordian-engine/gmwdg/gwdg"
)

// IDs wraps a list of node identifiers so it renders as one compact string,
// like "[3 17 42]", instead of a JSON array or a Go-syntax slice.
type IDs []gwdg.ID

func (v IDs) LogValue() slog.Value {
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	b.WriteByte(']')
	return slog.StringValue(b.String())
}
