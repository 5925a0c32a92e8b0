package model

// Clue is one level of the hunt, bound to a physical location
type Clue struct {
	Level    int
	Location string
	Text     string
	Hint     string
	Code     string // the string encoded in the location's QR sticker
}
