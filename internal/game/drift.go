package game

type vec struct {
	X, Y float64
}

// drift moves a point at constant velocity inside [0,maxX] x [0,maxY],
// reflecting a velocity component once the point is past that axis' bound.
type drift struct {
	pos  vec
	vel  vec
	maxX float64
	maxY float64
}

func (d *drift) step() {
	d.pos.X += d.vel.X
	d.pos.Y += d.vel.Y
	if d.pos.X < 0 || d.pos.X > d.maxX {
		d.vel.X = -d.vel.X
	}
	if d.pos.Y < 0 || d.pos.Y > d.maxY {
		d.vel.Y = -d.vel.Y
	}
}

func (d *drift) setBounds(maxX, maxY float64) {
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	d.maxX = maxX
	d.maxY = maxY
	d.pos.X = clamp(d.pos.X, maxX)
	d.pos.Y = clamp(d.pos.Y, maxY)
}

func clamp(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
