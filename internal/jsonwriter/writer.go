// Package jsonwriter builds a JSON document incrementally into a byte
// buffer without materializing the value tree.
//
// Containers are opened and closed in strict LIFO order. Keys are written
// only for members of an object; members of an array and the root
// container take an empty key. At any point before Finish the buffered
// text (including bytes already flushed) is a valid prefix of a JSON
// document.
//
// A Writer either grows its buffer on demand (New) or writes into a fixed
// region bound with SetBuffer. In the fixed mode an append that does not
// fit returns ErrBufferFull and changes nothing, so the caller can flush
// the buffered bytes, call ResetPos and retry.
package jsonwriter

import (
	"fmt"
	"io"
	"strconv"
)

const initialBufferSize = 4096

// Writer accumulates a JSON document. It is not safe for concurrent use.
type Writer struct {
	buf         []byte
	fixed       bool
	scratch     []byte
	stack       containerStack
	rootStarted bool
	finished    bool
}

// New returns a Writer backed by a growable buffer.
func New() *Writer {
	return &Writer{
		buf:     make([]byte, 0, initialBufferSize),
		scratch: make([]byte, 0, 64),
		stack:   newContainerStack(4),
	}
}

// SetBuffer binds a fixed-capacity output region and starts a new document.
// The capacity of buf bounds the bytes held between flushes.
func (w *Writer) SetBuffer(buf []byte) error {
	if !w.stack.isEmpty() {
		return ErrContainerOpen
	}

	w.buf = buf[:0]
	w.fixed = true
	w.rootStarted = false
	w.finished = false
	return nil
}

// StartObject opens an object. key names the member in the enclosing
// object and must be empty at the root or inside an array.
func (w *Writer) StartObject(key string) error {
	return w.start(Object, key)
}

// StartArray opens an array. key follows the same rules as StartObject.
func (w *Writer) StartArray(key string) error {
	return w.start(Array, key)
}

// EndObject closes the innermost container, which must be an object.
func (w *Writer) EndObject() error {
	return w.end(Object)
}

// EndArray closes the innermost container, which must be an array.
func (w *Writer) EndArray() error {
	return w.end(Array)
}

// AppendStr appends a string member to the innermost container.
func (w *Writer) AppendStr(key, value string) error {
	scratch, err := w.member(key)
	if err != nil {
		return err
	}
	return w.commitMember(appendQuoted(scratch, value))
}

// AppendInt appends a signed integer member to the innermost container.
func (w *Writer) AppendInt(key string, value int64) error {
	scratch, err := w.member(key)
	if err != nil {
		return err
	}
	return w.commitMember(strconv.AppendInt(scratch, value, 10))
}

// AppendUint appends an unsigned integer member to the innermost container.
func (w *Writer) AppendUint(key string, value uint64) error {
	scratch, err := w.member(key)
	if err != nil {
		return err
	}
	return w.commitMember(strconv.AppendUint(scratch, value, 10))
}

// AppendBool appends a boolean member to the innermost container.
func (w *Writer) AppendBool(key string, value bool) error {
	scratch, err := w.member(key)
	if err != nil {
		return err
	}
	return w.commitMember(strconv.AppendBool(scratch, value))
}

// SetValSplitter sets the text written between members of the innermost
// container. It applies to the next member written there.
func (w *Writer) SetValSplitter(separator string) error {
	top := w.stack.top()
	if top == nil {
		return ErrNoContainer
	}

	top.separator = separator
	return nil
}

// Finish completes the document. The root container must be closed.
func (w *Writer) Finish() error {
	if w.finished {
		return ErrFinished
	}
	if !w.stack.isEmpty() {
		return fmt.Errorf("%w: %d open", ErrUnbalanced, w.stack.size())
	}
	if !w.rootStarted {
		return ErrEmptyDocument
	}

	w.finished = true
	return nil
}

// Bytes returns the bytes written since the last ResetPos. The slice is
// only valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Pos returns the current write position.
func (w *Writer) Pos() int {
	return len(w.buf)
}

// ResetPos rewinds the write position to the start of the buffer. The
// container stack is kept, so the caller must have consumed Bytes first.
func (w *Writer) ResetPos() {
	w.buf = w.buf[:0]
}

// FlushTo writes the buffered bytes to dst and rewinds the buffer.
func (w *Writer) FlushTo(dst io.Writer) error {
	if len(w.buf) == 0 {
		return nil
	}

	if _, err := dst.Write(w.buf); err != nil {
		return err
	}

	w.ResetPos()
	return nil
}

func (w *Writer) start(kind Kind, key string) error {
	if w.finished {
		return ErrFinished
	}

	if w.stack.isEmpty() {
		if w.rootStarted {
			return ErrRootClosed
		}
		if key != "" {
			return ErrUnexpectedKey
		}

		w.scratch = append(w.scratch[:0], openerFor(kind))
		if err := w.commit(w.scratch); err != nil {
			return err
		}

		w.rootStarted = true
		w.stack.push(kind)
		return nil
	}

	scratch, err := w.member(key)
	if err != nil {
		return err
	}
	if err := w.commitMember(append(scratch, openerFor(kind))); err != nil {
		return err
	}

	w.stack.push(kind)
	return nil
}

func (w *Writer) end(kind Kind) error {
	if w.finished {
		return ErrFinished
	}

	top := w.stack.top()
	if top == nil {
		return ErrNoContainer
	}
	if top.kind != kind {
		return fmt.Errorf("%w: open %s, closing %s", ErrKindMismatch, top.kind, kind)
	}

	w.scratch = append(w.scratch[:0], kind.closer())
	if err := w.commit(w.scratch); err != nil {
		return err
	}

	w.stack.pop()
	return nil
}

// member stages the separator and key for the next member of the
// innermost container.
func (w *Writer) member(key string) ([]byte, error) {
	if w.finished {
		return nil, ErrFinished
	}

	top := w.stack.top()
	if top == nil {
		return nil, ErrNoContainer
	}

	scratch := w.scratch[:0]
	if top.hasMember {
		scratch = append(scratch, top.separator...)
	}

	switch top.kind {
	case Object:
		scratch = appendQuoted(scratch, key)
		scratch = append(scratch, ':')
	case Array:
		if key != "" {
			return nil, ErrUnexpectedKey
		}
	}

	return scratch, nil
}

func (w *Writer) commitMember(staged []byte) error {
	if err := w.commit(staged); err != nil {
		return err
	}

	w.stack.top().hasMember = true
	return nil
}

func (w *Writer) commit(staged []byte) error {
	w.scratch = staged[:0]

	if w.fixed && len(w.buf)+len(staged) > cap(w.buf) {
		return ErrBufferFull
	}

	w.buf = append(w.buf, staged...)
	return nil
}

func openerFor(kind Kind) byte {
	if kind == Array {
		return '['
	}
	return '{'
}
