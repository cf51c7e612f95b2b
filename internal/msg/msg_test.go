package msg

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old, oldNoColor := Output, color.NoColor
	Output, color.NoColor = &buf, true
	t.Cleanup(func() { Output, color.NoColor = old, oldNoColor })
	return &buf
}

func TestWarnPrefix(t *testing.T) {
	buf := captureOutput(t)
	Warn("'%s' does not exist", "dist")
	assert.Equal(t, "warn: 'dist' does not exist\n", buf.String())
}

func TestInfoAndError(t *testing.T) {
	buf := captureOutput(t)
	Info("now building %s", "libcppyy_backend.so")
	Error("boom")
	assert.Equal(t, "info: now building libcppyy_backend.so\nerror: boom\n", buf.String())
}

func TestIndentWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "  ", W: &buf}
	w.Write([]byte("one\ntwo\rthree"))
	assert.Equal(t, "  one\n  two\r  three", buf.String())
}

func TestProgressBarFinish(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBar(10, 2, &buf)
	n, err := pb.Write(make([]byte, 5))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), pb.Current)

	pb.Finish()
	assert.Contains(t, buf.String(), "100%")
	assert.Contains(t, buf.String(), "\n")
}
