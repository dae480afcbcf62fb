package report

import (
	"errors"
	"io"

	"github.com/jacoelho/getsidinfo/internal/jsonwriter"
)

// document drives a fixed-buffer jsonwriter.Writer and flushes to sink
// whenever the buffer fills up. The first error sticks and turns every
// later call into a no-op.
type document struct {
	w    *jsonwriter.Writer
	sink io.Writer
	err  error
}

func newDocument(sink io.Writer, bufferSize int) *document {
	w := jsonwriter.New()
	// A fresh writer has no open container, so binding cannot fail.
	_ = w.SetBuffer(make([]byte, 0, bufferSize))

	return &document{w: w, sink: sink}
}

// do runs op, retrying once after a flush when the buffer is full.
func (d *document) do(op func() error) {
	if d.err != nil {
		return
	}

	err := op()
	if errors.Is(err, jsonwriter.ErrBufferFull) {
		if err = d.w.FlushTo(d.sink); err == nil {
			err = op()
		}
	}
	d.err = err
}

func (d *document) startObject(key string) {
	d.do(func() error { return d.w.StartObject(key) })
}

func (d *document) endObject() {
	d.do(d.w.EndObject)
}

func (d *document) separator(sep string) {
	d.do(func() error { return d.w.SetValSplitter(sep) })
}

func (d *document) appendStr(key, value string) {
	d.do(func() error { return d.w.AppendStr(key, value) })
}

func (d *document) appendInt(key string, value int32) {
	d.do(func() error { return d.w.AppendInt(key, int64(value)) })
}

func (d *document) appendUint(key string, value uint32) {
	d.do(func() error { return d.w.AppendUint(key, uint64(value)) })
}

func (d *document) appendBool(key string, value bool) {
	d.do(func() error { return d.w.AppendBool(key, value) })
}

func (d *document) finish() {
	d.do(d.w.Finish)
}

func (d *document) flush() {
	if d.err != nil {
		return
	}
	d.err = d.w.FlushTo(d.sink)
}
