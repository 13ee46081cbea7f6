/*
 * MIT License
 *
 * Copyright (c) 2024-2026 Troupe Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapInfo(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, InfoLevel, logger.LogLevel())
}

func TestZapDebugSuppressedAtInfoLevel(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.Debug("invisible")
	assert.Zero(t, buffer.Len())
}

func TestZapFormatted(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(DebugLevel, buffer)
	logger.Debugf("count=%d", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "count=7", entry["msg"])
}

func TestZapPanic(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	assert.Panics(t, func() { logger.Panic("boom") })
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARNING", WarningLevel.String())
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestDiscardLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		DiscardLogger.Info("dropped")
		DiscardLogger.Errorf("dropped %d", 1)
	})
}
