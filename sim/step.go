package sim

// stepRange advances particles [i0, i1) by one tick, reading the whole src
// buffer and writing only the matching dst slots. It is the CPU encoding of
// the per-particle algorithm; gpu/step.glsl is the same algorithm with the
// same branch structure and constants.
//
// Positions are clip space, velocities and radii pixel space: pair deltas
// are scaled up by half the viewport before the distance test, and the new
// velocity is scaled back down before it moves the position.
func stepRange(dst, src []Particle, rules *Snapshot, width, height float32, i0, i1 int) {
	halfW := 0.5 * width
	halfH := 0.5 * height
	toClipX := 2 / width
	toClipY := 2 / height

	// Particle extent in clip units, used as the reflecting margin.
	clipW := Diameter / width
	clipH := Diameter / height

	kinds := rules.Kinds

	for i := i0; i < i1; i++ {
		p := src[i]
		ka := int(p.Kind)

		var fx, fy float32
		for j := range src {
			if j == i {
				continue
			}
			q := &src[j]

			dx := q.Pos.X - p.Pos.X
			dy := q.Pos.Y - p.Pos.Y
			if rules.Wrap {
				// Pick the shorter way around the torus on each axis.
				if dx > 1 {
					dx -= 2
				} else if dx < -1 {
					dx += 2
				}
				if dy > 1 {
					dy -= 2
				} else if dy < -1 {
					dy += 2
				}
			}

			dx *= halfW
			dy *= halfH
			dist2 := dx*dx + dy*dy

			pi := PairIndex(ka, int(q.Kind))
			if dist2 < minDist2 || dist2 > rules.InfluenceSq[pi] {
				continue
			}

			dist := sqrt32(dist2)
			mag := ForceMag(dist,
				SymmetricProps{RepelDistance: rules.Repel[pi], InfluenceRadius: rules.Influence[pi]},
				rules.Attraction[ka*kinds+int(q.Kind)],
				rules.FlatForce)

			fx += mag * dx / dist
			fy += mag * dy / dist
		}

		// Accumulated force joins the velocity before damping.
		damp := 1 - rules.Friction
		vx := (p.Vel.X + fx) * damp
		vy := (p.Vel.Y + fy) * damp

		px := p.Pos.X + vx*toClipX
		py := p.Pos.Y + vy*toClipY

		if rules.Wrap {
			if px > 1 {
				px -= 2
			} else if px < -1 {
				px += 2
			}
			if py > 1 {
				py -= 2
			} else if py < -1 {
				py += 2
			}
		} else {
			if px+clipW > 1 {
				px = 1 - clipW
				vx = -vx
			} else if px-clipW < -1 {
				px = -1 + clipW
				vx = -vx
			}
			if py+clipH > 1 {
				py = 1 - clipH
				vy = -vy
			} else if py-clipH < -1 {
				py = -1 + clipH
				vy = -vy
			}
		}

		dst[i] = Particle{Pos: Vec2{px, py}, Vel: Vec2{vx, vy}, Kind: p.Kind}
	}
}
