package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	assert.Equal(t, "", Err(nil).Value.String())
}

func TestNewWithWriter_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "prod", "info")
	log.Info("order settled", slog.String("order_id", "ORD-1"))

	assert.Contains(t, buf.String(), `"msg":"order settled"`)
	assert.Contains(t, buf.String(), `"order_id":"ORD-1"`)
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "dev", "warn")
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
