package ui

import (
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rule is one CSS rule: a simple selector and its raw declarations.
type Rule struct {
	Selector string            // ".panel" or "#menu"
	Props    map[string]string // "background" -> "#333"
}

// Stylesheet is an ordered rule list; later rules override earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// Match merges the declarations of every rule selecting n, in sheet order.
func (s *Stylesheet) Match(n *Node) map[string]string {
	merged := make(map[string]string)
	if s == nil {
		return merged
	}
	for _, r := range s.Rules {
		if len(r.Selector) < 2 {
			continue
		}
		name := r.Selector[1:]
		if (r.Selector[0] == '.' && n.Class == name) || (r.Selector[0] == '#' && n.ID == name) {
			for k, v := range r.Props {
				merged[k] = v
			}
		}
	}
	return merged
}

// Length is a pixel or percentage value. A percentage positions the node within the free
// space of the screen, so left: 100% puts its right edge on the screen's right edge.
type Length struct {
	Value int32
	Pct   bool
}

// Resolve returns the length in pixels given the free space along its axis.
func (l Length) Resolve(free int32) int32 {
	if l.Pct {
		return free * l.Value / 100
	}
	return l.Value
}

// Style is the resolved look of one node.
type Style struct {
	Background rl.Color
	Color      rl.Color
	Border     rl.Color
	HasBorder  bool
	Width      int32
	Height     int32
	Left       Length
	Top        Length
	Padding    int32 // text inset from the node's top-left
	LineHeight int32 // step between rows of the same class
	FontSize   int32
}

// DefaultStyle is a transparent, borderless node with white text.
func DefaultStyle() Style {
	return Style{
		Background: rl.Blank,
		Color:      rl.White,
		Padding:    4,
		LineHeight: 24,
		FontSize:   defaultFontSize,
	}
}

// ResolveProps turns merged declarations into a Style. Unknown properties and values
// that do not parse are ignored.
func ResolveProps(props map[string]string) Style {
	out := DefaultStyle()
	for k, v := range props {
		v = strings.TrimSpace(v)
		switch k {
		case "background", "background-color":
			if c, ok := ParseColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseColor(v); ok {
				out.Color = c
			}
		case "border", "border-color":
			// The last color-looking token wins, so "1px solid #abc" works.
			fields := strings.Fields(v)
			for i := len(fields) - 1; i >= 0; i-- {
				if c, ok := ParseColor(fields[i]); ok {
					out.Border, out.HasBorder = c, true
					break
				}
			}
		case "width":
			if l, ok := ParseLength(v); ok && !l.Pct {
				out.Width = l.Value
			}
		case "height":
			if l, ok := ParseLength(v); ok && !l.Pct {
				out.Height = l.Value
			}
		case "left":
			if l, ok := ParseLength(v); ok {
				out.Left = l
			}
		case "top":
			if l, ok := ParseLength(v); ok {
				out.Top = l
			}
		case "padding":
			if l, ok := ParseLength(v); ok && !l.Pct && l.Value >= 0 {
				out.Padding = l.Value
			}
		case "line-height":
			if l, ok := ParseLength(v); ok && !l.Pct && l.Value > 0 {
				out.LineHeight = l.Value
			}
		case "font-size":
			if l, ok := ParseLength(v); ok && !l.Pct && l.Value > 0 {
				out.FontSize = l.Value
			}
		}
	}
	return out
}

// ParseLength parses "12", "12px" or "50%". Percentages must be within 0–100.
func ParseLength(s string) (Length, bool) {
	s = strings.TrimSpace(s)
	if p, ok := strings.CutSuffix(s, "%"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 100 {
			return Length{}, false
		}
		return Length{Value: int32(n), Pct: true}, true
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	n, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: int32(n)}, true
}

// ParseColor parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b) and rgba(r, g, b, a)
// with a in 0–1.
func ParseColor(s string) (rl.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		return parseHex(hex)
	}
	if args, ok := cutFunc(s, "rgba"); ok && len(args) == 4 {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil || a < 0 || a > 1 {
			return rl.Color{}, false
		}
		c, ok := rgb(args[:3])
		c.A = uint8(a*255 + 0.5)
		return c, ok
	}
	if args, ok := cutFunc(s, "rgb"); ok && len(args) == 3 {
		return rgb(args)
	}
	return rl.Color{}, false
}

func parseHex(hex string) (rl.Color, bool) {
	switch len(hex) {
	case 3, 4:
		// Short form: each digit is doubled.
		var b strings.Builder
		for i := 0; i < len(hex); i++ {
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		hex = b.String()
	case 6, 8:
	default:
		return rl.Color{}, false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rl.Color{}, false
	}
	return rl.NewColor(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), true
}

// cutFunc splits "name(a, b, c)" into its trimmed arguments.
func cutFunc(s, name string) ([]string, bool) {
	rest, ok := strings.CutPrefix(s, name+"(")
	if !ok {
		return nil, false
	}
	rest, ok = strings.CutSuffix(rest, ")")
	if !ok {
		return nil, false
	}
	args := strings.Split(rest, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args, true
}

func rgb(args []string) (rl.Color, bool) {
	var ch [3]uint8
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 || n > 255 {
			return rl.Color{}, false
		}
		ch[i] = uint8(n)
	}
	return rl.NewColor(ch[0], ch[1], ch[2], 255), true
}
