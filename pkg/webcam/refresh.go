package webcam

import (
	"context"
)

// Result describes the outcome of a Refresh cycle
type Result struct {
	// Fetched is true when a new copy was retrieved from the remote
	Fetched bool
	// Archived is the archive location of the replaced copy
	Archived string
}

// Refresh runs one unattended cycle: check the freshness, retrieve the
// image if required and resize it.
func (w *Webcam) Refresh(ctx context.Context) (res Result, err error) {
	if _, err = w.CheckIsNew(ctx); err != nil {
		return res, err
	}

	fetch := w.state.needsFetch()
	if res.Archived, err = w.Retrieve(ctx); err != nil {
		return res, err
	}
	res.Fetched = fetch

	return res, w.Shrink()
}
