package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

const (
	axisPitch = iota
	axisYaw
	axisRoll
)

// spinAxis is one rotation angle and the angular velocity moving it. accel
// is the spring's own velocity while it pulls vel back to zero.
type spinAxis struct {
	angle float64
	vel   float64
	accel float64
}

// Spin turns the model in response to impulses. Every axis keeps spinning
// until a critically damped spring brings its velocity to rest.
type Spin struct {
	axes   [3]spinAxis
	spring harmonica.Spring
}

// NewSpin creates a spin stepped fps times a second.
func NewSpin(fps int) *Spin {
	return &Spin{
		// Frequency 4.0 = moderate speed, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Impulse adds angular velocity, in radians per step, to each axis.
func (s *Spin) Impulse(pitch, yaw, roll float64) {
	s.axes[axisPitch].vel += pitch
	s.axes[axisYaw].vel += yaw
	s.axes[axisRoll].vel += roll
}

// Step advances every angle by its velocity and decays the velocity.
func (s *Spin) Step() {
	for i := range s.axes {
		a := &s.axes[i]
		a.angle += a.vel
		a.vel, a.accel = s.spring.Update(a.vel, a.accel, 0)
	}
}

// Reset stops the spin and returns to the initial orientation.
func (s *Spin) Reset() {
	s.axes = [3]spinAxis{}
}

// Angles returns pitch, yaw and roll in radians.
func (s *Spin) Angles() (pitch, yaw, roll float64) {
	return s.axes[axisPitch].angle, s.axes[axisYaw].angle, s.axes[axisRoll].angle
}

// Resting reports whether every axis has effectively stopped.
func (s *Spin) Resting() bool {
	for _, a := range s.axes {
		if math.Abs(a.vel) > 1e-6 {
			return false
		}
	}
	return true
}

// Matrix returns the rotation for the current angles.
func (s *Spin) Matrix() math3d.Mat4 {
	pitch, yaw, roll := s.Angles()
	return math3d.RotateX(pitch).
		Mul(math3d.RotateY(yaw)).
		Mul(math3d.RotateZ(roll))
}
