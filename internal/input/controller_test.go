package input

import (
	"testing"
)

// readAll shifts out count bits.
func readAll(c *Controller, count int) []uint8 {
	bits := make([]uint8, count)
	for i := range bits {
		bits[i] = c.Read()
	}
	return bits
}

func TestReadShiftsButtonsInOrder(t *testing.T) {
	c := New()
	c.SetButtons(uint8(ButtonA | ButtonStart | ButtonRight))

	c.Write(1)
	c.Write(0)

	// A, B, Select, Start, Up, Down, Left, Right.
	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 1}
	bits := readAll(c, 8)
	for i, want := range expected {
		if bits[i] != want {
			t.Errorf("Bit %d: expected %d, got %d", i, want, bits[i])
		}
	}
}

func TestReadsPastEighthReturnOne(t *testing.T) {
	c := New()
	c.Write(1)
	c.Write(0)

	readAll(c, 8)
	for i := 0; i < 4; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("Read %d past the register: expected 1, got %d", i+9, got)
		}
	}
}

func TestStrobeHeldRepeatsA(t *testing.T) {
	c := New()
	c.SetButtons(uint8(ButtonA))
	c.Write(1)

	for i := 0; i < 5; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("Read %d with strobe held: expected A bit 1, got %d", i, got)
		}
	}
}

func TestStrobeSnapshotsButtons(t *testing.T) {
	c := New()
	c.SetButtons(uint8(ButtonB))
	c.Write(1)
	c.Write(0)

	// Releasing after the strobe drop must not change the shifted bits.
	c.SetButtons(0)

	bits := readAll(c, 8)
	if bits[1] != 1 {
		t.Errorf("Expected B bit latched as 1, got %d", bits[1])
	}
}

func TestRestrobeResetsShiftPosition(t *testing.T) {
	c := New()
	c.SetButtons(uint8(ButtonA))
	c.Write(1)
	c.Write(0)

	readAll(c, 3)

	c.Write(1)
	c.Write(0)
	if got := c.Read(); got != 1 {
		t.Errorf("Expected first bit (A) after restrobe, got %d", got)
	}
}

func TestPressAndRelease(t *testing.T) {
	c := New()
	c.Press(ButtonLeft)
	c.Press(ButtonA)
	c.Release(ButtonA)

	c.Write(1)
	c.Write(0)
	bits := readAll(c, 8)
	if bits[0] != 0 {
		t.Errorf("Expected A released, got %d", bits[0])
	}
	if bits[6] != 1 {
		t.Errorf("Expected Left held, got %d", bits[6])
	}
}
