package core

// Black is the zero color
var Black = Vec3{}

// ToneMapACES applies the Narkowicz ACES filmic curve per channel and clamps to [0, 1]
func ToneMapACES(c Vec3) Vec3 {
	aces := func(x float64) float64 {
		const a, b, c1, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
		return (x * (a*x + b)) / (x*(c1*x+d) + e)
	}
	return Vec3{X: aces(c.X), Y: aces(c.Y), Z: aces(c.Z)}.Clamp01()
}

// ToByte quantizes a [0, 1] channel with rounding
func ToByte(v float64) uint8 {
	v = max(0, min(1, v))
	return uint8(v*255 + 0.5)
}
