package main

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/spice-go/domain/geometry"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 20,110,220")
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{Left: 10, Top: 20, Right: 110, Bottom: 220}, r)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "10,10,10,20", "10,10,5,20"} {
		_, err := parseRect(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("1920X1080")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	for _, bad := range []string{"1920", "0x10", "axb", "10x-1"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseAssignment(t *testing.T) {
	k, v, err := parseAssignment(" controlnet.weight = 0.8 ")
	require.NoError(t, err)
	assert.Equal(t, "controlnet.weight", k)
	assert.Equal(t, "0.8", v)

	k, v, err = parseAssignment("negative_prompt=")
	require.NoError(t, err)
	assert.Equal(t, "negative_prompt", k)
	assert.Empty(t, v)

	_, _, err = parseAssignment("steps")
	assert.Error(t, err)
	_, _, err = parseAssignment("=3")
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	_, err = parseHexColor("fff")
	assert.Error(t, err)
	_, err = parseHexColor("gggggg")
	assert.Error(t, err)
}
