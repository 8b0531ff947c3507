package webcam

// state tracks which pipeline stages are outstanding
type state uint8

const (
	// stateNeedFetch: the local copy must be (re-)fetched, there is no
	// resize outstanding for the current local file
	stateNeedFetch state = iota
	// stateNeedFetchAndShrink: fetch required and the local file (if
	// any) has not been resized
	stateNeedFetchAndShrink
	// stateNeedShrink: the local file is current but not yet resized
	stateNeedShrink
	// stateReady: nothing to do until the next freshness check
	stateReady
)

func initialState(localExists bool) state {
	if localExists {
		return stateNeedFetch
	}
	return stateNeedFetchAndShrink
}

func (s state) needsFetch() bool {
	return s == stateNeedFetch || s == stateNeedFetchAndShrink
}

func (s state) needsShrink() bool {
	return s == stateNeedFetchAndShrink || s == stateNeedShrink
}

// checked applies the result of a freshness check
func (s state) checked(stale bool) state {
	switch {
	case stale && s.needsShrink():
		return stateNeedFetchAndShrink
	case stale:
		return stateNeedFetch
	case s.needsShrink():
		return stateNeedShrink
	default:
		return stateReady
	}
}

// fetched applies a successful retrieval: every new file needs a resize
func (state) fetched() state { return stateNeedShrink }

// shrunk applies a successful (or skipped) resize
func (s state) shrunk() state {
	if s.needsFetch() {
		return stateNeedFetch
	}
	return stateReady
}

func (s state) String() string {
	switch s {
	case stateNeedFetch:
		return "need-fetch"
	case stateNeedFetchAndShrink:
		return "need-fetch-and-shrink"
	case stateNeedShrink:
		return "need-shrink"
	case stateReady:
		return "ready"
	default:
		return "unknown"
	}
}
