package ygs

// Fixed is a 16.16 fixed point scale factor.
type Fixed int32

// FixedOne is a scale of 1.
const FixedOne Fixed = 1 << 16

// FixedFromFloat converts f to the nearest representable Fixed.
func FixedFromFloat(f float32) Fixed {
	if f < 0 {
		return Fixed(f*float32(FixedOne) - 0.5)
	}
	return Fixed(f*float32(FixedOne) + 0.5)
}

// Float widens x to float32.
func (x Fixed) Float() float32 { return float32(x) / float32(FixedOne) }

// scale multiplies n by x, truncating toward zero.
func (x Fixed) scale(n int) int { return int(float32(n) * x.Float()) }
