package ui

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	defaultFontSize = 20
	textSpacing     = 1
	ellipsis        = "..."
)

// Engine draws a flat list of styled nodes over the 3D view, first node at the back.
// Styles are resolved when the sheet or node list changes; layout runs every frame so
// percentage positions follow window resizes.
type Engine struct {
	sheet  *Stylesheet
	nodes  []*Node
	styles []Style
	font   rl.Font
}

// New returns an engine with no stylesheet and no nodes.
func New() *Engine {
	return &Engine{}
}

// LoadCSS replaces the stylesheet with the one parsed from path.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	sheet, err := ParseCSS(string(data))
	if err != nil {
		return err
	}
	e.SetStylesheet(sheet)
	return nil
}

// SetStylesheet replaces the stylesheet and restyles the current nodes.
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
	e.restyle()
}

// HasStylesheet reports whether a stylesheet with at least one rule is set.
func (e *Engine) HasStylesheet() bool {
	return e.sheet != nil && len(e.sheet.Rules) > 0
}

// Stylesheet returns the current stylesheet, or nil.
func (e *Engine) Stylesheet() *Stylesheet {
	return e.sheet
}

// LoadFont loads a TTF or OTF face for all text. Needs a live window. On failure the
// previous font stays in use.
func (e *Engine) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return fmt.Errorf("ui: load font %s: %w", path, os.ErrNotExist)
	}
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
	}
	e.font = f
	return nil
}

// Font returns the loaded font; its texture ID is zero when none is loaded.
func (e *Engine) Font() rl.Font { return e.font }

// SetNodes replaces the node list. The engine keeps nodes; callers must not reuse it.
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
	e.restyle()
}

func (e *Engine) restyle() {
	e.styles = e.styles[:0]
	for _, n := range e.nodes {
		e.styles = append(e.styles, ResolveProps(e.sheet.Match(n)))
	}
}

// layout places n on a screen of the given size. A zero styled width or height keeps
// the node's previous extent on that axis.
func layout(n *Node, st Style, screenW, screenH int32) {
	if st.Width > 0 {
		n.Bounds.Width = float32(st.Width)
	}
	if st.Height > 0 {
		n.Bounds.Height = float32(st.Height)
	}
	w, h := int32(n.Bounds.Width), int32(n.Bounds.Height)
	n.Bounds.X = float32(st.Left.Resolve(screenW - w))
	n.Bounds.Y = float32(st.Top.Resolve(screenH-h) + int32(n.Row)*st.LineHeight)
}

// fitText shortens text with a trailing ellipsis until measure reports it fits in max
// pixels. A non-positive max disables fitting.
func fitText(text string, max int32, measure func(string) int32) string {
	if max <= 0 || measure(text) <= max {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		s := string(runes[:n]) + ellipsis
		if measure(s) <= max {
			return s
		}
	}
	return ellipsis
}

func (e *Engine) measure(size int32) func(string) int32 {
	if e.font.Texture.ID == 0 {
		return func(s string) int32 { return rl.MeasureText(s, size) }
	}
	return func(s string) int32 {
		return int32(rl.MeasureTextEx(e.font, s, float32(size), textSpacing).X)
	}
}

func (e *Engine) text(s string, x, y int32, st Style) {
	if e.font.Texture.ID == 0 {
		rl.DrawText(s, x, y, st.FontSize, st.Color)
		return
	}
	rl.DrawTextEx(e.font, s, rl.NewVector2(float32(x), float32(y)), float32(st.FontSize), textSpacing, st.Color)
}

// Draw lays out and draws every node: background, 1px border, then text clipped to
// the node's width.
func (e *Engine) Draw() {
	screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	for i, n := range e.nodes {
		st := e.styles[i]
		layout(n, st, screenW, screenH)
		x, y := int32(n.Bounds.X), int32(n.Bounds.Y)
		w, h := int32(n.Bounds.Width), int32(n.Bounds.Height)

		if st.Background.A > 0 && w > 0 && h > 0 {
			rl.DrawRectangle(x, y, w, h, st.Background)
		}
		if st.HasBorder && w > 0 && h > 0 {
			rl.DrawRectangleLines(x, y, w, h, st.Border)
		}
		if n.Kind != KindLabel || n.Text == "" {
			continue
		}
		room := w - 2*st.Padding
		if w == 0 {
			room = 0
		}
		e.text(fitText(n.Text, room, e.measure(st.FontSize)), x+st.Padding, y+st.Padding, st)
	}
}
