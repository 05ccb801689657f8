package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLoopSegments(t *testing.T) {
	a, b, c := r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}
	segs := LoopSegments([]r3.Vec{a, b, c})
	assert.Equal(t, [][2]r3.Vec{{c, a}, {a, b}, {b, c}}, segs)

	assert.Nil(t, LoopSegments(nil))
	assert.Nil(t, LoopSegments([]r3.Vec{a}))
}

func TestPickerFunc(t *testing.T) {
	var p Picker = PickerFunc(func(prompt string) (Pick, error) {
		return Pick{Element: "el", Ref: "el:1:SURFACE"}, nil
	})
	got, err := p.PickFace("pick a face")
	assert.NoError(t, err)
	assert.Equal(t, Pick{Element: "el", Ref: "el:1:SURFACE"}, got)

	canceled := PickerFunc(func(string) (Pick, error) { return Pick{}, ErrPickCanceled })
	_, err = canceled.PickFace("")
	assert.ErrorIs(t, err, ErrPickCanceled)
}
