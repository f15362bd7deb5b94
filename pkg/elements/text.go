package elements

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-guihck/guihck/pkg/core"
)

// Text properties.
const (
	PropText   = "text"
	PropSize   = "size"
	PropWidth  = "width"
	PropHeight = "height"
)

// defaultTextSize is the pixel height of the bundled bitmap face.
const defaultTextSize = 13

type textState struct {
	measured bool
	text     string
	size     float64
}

type textElement struct {
	face font.Face
}

// RegisterText registers the text type. Text elements draw nothing; their
// update pass measures the text property at the requested size and
// publishes the extent as width and height, so sibling bindings can lay
// out around it within the same frame.
func RegisterText(ctx *core.Context) (core.TypeID, error) {
	return ctx.Register(TypeText, textElement{face: basicfont.Face7x13}, 0)
}

func (textElement) NewData() any { return &textState{} }

func (textElement) Init(c *core.Context, id core.ElementID, data any) {
	setDefault(c, id, PropText, "")
	setDefault(c, id, PropSize, int64(defaultTextSize))
}

func (textElement) Destroy(*core.Context, core.ElementID, any) {}

func (t textElement) Update(c *core.Context, id core.ElementID, data any) bool {
	st := data.(*textState)
	s := stringProp(c, id, PropText)
	size := number(c, id, PropSize, defaultTextSize)
	if st.measured && st.text == s && st.size == size {
		return false
	}
	st.measured, st.text, st.size = true, s, size

	w, h := Measure(t.face, s, size)
	changed := setIfChanged(c, id, PropWidth, w)
	if setIfChanged(c, id, PropHeight, h) {
		changed = true
	}
	return changed
}

func (textElement) Render(*core.Context, core.ElementID, any) {}

// Measure returns the pixel extent of s drawn with face scaled to size.
// Lines are separated by newlines; the width is that of the widest line.
func Measure(face font.Face, s string, size float64) (width, height int64) {
	if face == nil {
		face = basicfont.Face7x13
	}
	metrics := face.Metrics()
	base := float64(metrics.Height.Ceil())
	if size <= 0 {
		size = base
	}
	scale := size / base

	lines := strings.Split(s, "\n")
	var widest int
	for _, line := range lines {
		if adv := font.MeasureString(face, line).Ceil(); adv > widest {
			widest = adv
		}
	}
	width = int64(math.Ceil(float64(widest) * scale))
	height = int64(math.Ceil(base * scale * float64(len(lines))))
	return width, height
}
