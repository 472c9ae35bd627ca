package storage

import (
	"io"
	"sync"
	"time"
)

// ProgressFunc receives the transfer percentage, 0 to 100. Values within one
// attempt never decrease.
type ProgressFunc func(percent float64)

// progressReader counts the bytes the HTTP transport pulls from the request
// body and translates them into percentages. It also records the time of the
// last read so a watchdog can detect a stalled transfer.
type progressReader struct {
	r        io.Reader
	total    int64
	onChange ProgressFunc

	mu       sync.Mutex
	read     int64
	lastTick time.Time
}

func newProgressReader(r io.Reader, total int64, onChange ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onChange: onChange, lastTick: time.Now()}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		p.lastTick = time.Now()
		read, total := p.read, p.total
		p.mu.Unlock()

		if p.onChange != nil && total > 0 {
			percent := float64(read) / float64(total) * 100
			if percent > 100 {
				percent = 100
			}
			p.onChange(percent)
		}
	}
	return n, err
}

func (p *progressReader) lastActivity() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTick
}
