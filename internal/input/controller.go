// Package input implements the standard NES controller's serial
// protocol.
package input

// Button masks in shift-out order: A comes first on the wire.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one joypad. While the strobe line is high the shift
// register continuously reloads from the live button state; dropping
// the strobe freezes a snapshot that Read then shifts out one bit at a
// time. Reads past the eighth bit return 1, which is how software
// detects a standard controller.
type Controller struct {
	buttons uint8 // live state
	shift   uint8 // snapshot taken when the strobe drops
	strobe  bool
	index   uint8
}

// New creates a controller with no buttons held.
func New() *Controller {
	return &Controller{}
}

// SetButtons replaces the live button state with mask.
func (c *Controller) SetButtons(mask uint8) {
	c.buttons = mask
}

// Press holds down a button.
func (c *Controller) Press(b Button) {
	c.buttons |= uint8(b)
}

// Release lets go of a button.
func (c *Controller) Release(b Button) {
	c.buttons &^= uint8(b)
}

// Write drives the strobe line from bit 0 of value. Dropping the line
// latches the snapshot the following reads shift out.
func (c *Controller) Write(value uint8) {
	strobe := value&0x01 != 0
	if c.strobe && !strobe {
		c.shift = c.buttons
		c.index = 0
	}
	c.strobe = strobe
	if strobe {
		c.index = 0
	}
}

// Read shifts out the next button bit.
func (c *Controller) Read() uint8 {
	if c.strobe {
		// Strobe held: every read reports the live A button.
		return c.buttons & 0x01
	}
	if c.index >= 8 {
		return 1
	}
	bit := (c.shift >> c.index) & 0x01
	c.index++
	return bit
}
