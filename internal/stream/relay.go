package stream

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClientGone marks a relay that stopped because the consumer went away.
var ErrClientGone = errors.New("stream consumer closed")

// Result describes a finished relay.
type Result struct {
	Text   string
	Chunks int
	Bytes  int64
	// Err is nil on a clean end of the source stream.
	Err error
}

// Copy forwards src to dst unchanged, one read at a time, feeding every
// forwarded byte to acc. It returns on EOF, on the first read error or on the
// first write error.
func Copy(dst io.Writer, src io.Reader, acc *Accumulator) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			_, _ = acc.Write(buf[:n])
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, fmt.Errorf("%w: %v", ErrClientGone, werr)
			}
			if w != n {
				return written, fmt.Errorf("%w: %v", ErrClientGone, io.ErrShortWrite)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// Pipe starts relaying src in a new goroutine and returns the consumer end.
// When the relay stops for any reason the consumer end is closed, src is
// closed, and then finish runs with the accumulated result. Each of these
// happens exactly once, including when src yields nothing.
//
// Closing the returned reader makes pending relay writes fail, which ends the
// relay the same way a clean end of src does.
func Pipe(src io.ReadCloser, finish func(Result)) io.ReadCloser {
	pr, pw := io.Pipe()
	r := &relay{src: src, dst: pw, finish: finish}
	go r.run()
	return pr
}

type relay struct {
	src    io.ReadCloser
	dst    *io.PipeWriter
	finish func(Result)

	closeOnce  sync.Once
	finishOnce sync.Once
}

func (r *relay) run() {
	var (
		acc Accumulator
		res Result
	)
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("relay panic: %v", p)
		}
		r.close()
		acc.Flush()
		res.Text = acc.Text()
		res.Chunks = acc.Chunks()
		r.done(res)
	}()

	res.Bytes, res.Err = Copy(r.dst, r.src, &acc)
}

func (r *relay) close() {
	r.closeOnce.Do(func() {
		_ = r.dst.Close()
		_ = r.src.Close()
	})
}

func (r *relay) done(res Result) {
	r.finishOnce.Do(func() {
		if r.finish != nil {
			r.finish(res)
		}
	})
}
