package update

import "math"

// progressTracker folds a stream of ProgressEvent into a percentage.
type progressTracker struct {
	total      int64
	downloaded int64
	percent    int
	finished   bool
}

// apply returns true when the event changed the reported percentage or
// completed the download.
func (p *progressTracker) apply(e ProgressEvent) bool {
	if p.finished {
		return false
	}
	switch e.Kind {
	case Started:
		p.total = e.TotalBytes
		p.downloaded = 0
		return false
	case Progress:
		p.downloaded += e.ChunkBytes
		if p.total <= 0 {
			return false
		}
		pct := int(math.Round(100 * float64(p.downloaded) / float64(p.total)))
		pct = min(max(pct, p.percent), 100)
		if pct == p.percent {
			return false
		}
		p.percent = pct
		return true
	case Finished:
		p.percent = 100
		p.finished = true
		return true
	}
	return false
}
