package model

type Hand uint8

const (
	HandLeft Hand = iota
	HandRight
	HandEither
)

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	}
	return "either"
}
