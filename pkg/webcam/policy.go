package webcam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Bounds for the dimensions of source and resized images
const (
	MaxWidth  = 6000
	MaxHeight = 5000
)

type shrinkMode uint8

const (
	shrinkNone shrinkMode = iota
	shrinkPercentage
	shrinkDimensions
)

// ShrinkPolicy selects how the fetched image is resized: not at all,
// proportionally by a percentage or to fixed dimensions. The zero
// value disables resizing.
type ShrinkPolicy struct {
	mode    shrinkMode
	percent int
	width   int
	height  int
}

// ShrinkNone disables resizing
func ShrinkNone() ShrinkPolicy { return ShrinkPolicy{} }

// ShrinkPercent scales both axes to p percent. A percentage of 0
// disables resizing.
func ShrinkPercent(p int) ShrinkPolicy {
	if p == 0 {
		return ShrinkNone()
	}
	return ShrinkPolicy{mode: shrinkPercentage, percent: p}
}

// ShrinkDimensions resizes to exactly width x height
func ShrinkDimensions(width, height int) ShrinkPolicy {
	return ShrinkPolicy{mode: shrinkDimensions, width: width, height: height}
}

// ParseShrinkPolicy reads a policy from its textual form: an empty
// string or "0" disables resizing, "50" scales to 50%, "200x150"
// resizes to fixed dimensions.
func ParseShrinkPolicy(s string) (ShrinkPolicy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ShrinkNone(), nil
	}

	if w, h, ok := strings.Cut(strings.ToLower(s), "x"); ok {
		width, err := strconv.Atoi(w)
		if err != nil {
			return ShrinkPolicy{}, errors.Wrapf(ErrInvalidArgument, "parsing width %q", w)
		}
		height, err := strconv.Atoi(h)
		if err != nil {
			return ShrinkPolicy{}, errors.Wrapf(ErrInvalidArgument, "parsing height %q", h)
		}
		return ShrinkDimensions(width, height), nil
	}

	p, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		return ShrinkPolicy{}, errors.Wrapf(ErrInvalidArgument, "parsing percentage %q", s)
	}

	return ShrinkPercent(p), nil
}

// IsNone reports whether the policy disables resizing
func (p ShrinkPolicy) IsNone() bool { return p.mode == shrinkNone }

// Validate checks the policy parameters are within bounds
func (p ShrinkPolicy) Validate() error {
	switch p.mode {
	case shrinkNone:
		return nil

	case shrinkPercentage:
		if p.percent <= 0 || p.percent >= 100 {
			return errors.Wrapf(ErrInvalidArgument, "shrink percentage %d not in range 1-99", p.percent)
		}
		return nil

	case shrinkDimensions:
		if err := checkDimensions(p.width, p.height); err != nil {
			return errors.Wrap(ErrInvalidArgument, err.Error())
		}
		return nil

	default:
		return errors.Wrapf(ErrInvalidArgument, "unknown shrink mode %d", p.mode)
	}
}

// Target computes the resized dimensions for a source image of the given
// size. The result is not bounds checked.
func (p ShrinkPolicy) Target(width, height int) (int, int) {
	switch p.mode {
	case shrinkPercentage:
		return width * p.percent / 100, height * p.percent / 100
	case shrinkDimensions:
		return p.width, p.height
	default:
		return width, height
	}
}

func (p ShrinkPolicy) String() string {
	switch p.mode {
	case shrinkPercentage:
		return fmt.Sprintf("%d%%", p.percent)
	case shrinkDimensions:
		return fmt.Sprintf("%dx%d", p.width, p.height)
	default:
		return "none"
	}
}

func checkDimensions(width, height int) error {
	if width < 1 || width > MaxWidth || height < 1 || height > MaxHeight {
		return errors.Errorf("dimensions %dx%d not within 1x1 - %dx%d", width, height, MaxWidth, MaxHeight)
	}
	return nil
}
