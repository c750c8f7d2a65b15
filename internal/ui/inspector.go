package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"property-explorer/internal/property"

	"github.com/jinzhu/copier"
)

// InspectorWidth is the panel width in pixels set by DefaultCSS.
const InspectorWidth = 420

// DefaultCSS styles the inspector when no stylesheet file is loaded.
const DefaultCSS = `
.inspector { background: rgba(15, 23, 42, 0.92); border: #334155; left: 100%; top: 0; width: 420px; height: 2000px; }
.inspector-title { color: #f8fafc; left: 100%; width: 420px; top: 16px; font-size: 26px; padding: 16px; }
.inspector-score { color: #22c55e; left: 100%; width: 420px; top: 56px; font-size: 22px; padding: 16px; }
.inspector-line { color: #cbd5e1; left: 100%; width: 420px; top: 96px; line-height: 26px; padding: 16px; }
.inspector-hint { color: #64748b; left: 100%; width: 420px; top: 0; line-height: 26px; padding: 16px; }
`

// Inspector is the right-side detail panel for the property being inspected. Show
// takes a deep copy of the property, so the panel never shares maps with the scene.
// Show and Hide may be called from any goroutine; AppendNodes runs on the frame thread.
type Inspector struct {
	mu       sync.Mutex
	visible  bool
	current  property.Property
	revision uint64

	panel *Node
	title *Node
	score *Node
	hint  *Node
	lines []*Node
}

// NewInspector creates a hidden Inspector with nodes styled by the engine's CSS
// (.inspector, .inspector-title, .inspector-score, .inspector-line, .inspector-hint).
func NewInspector() *Inspector {
	return &Inspector{
		panel: Panel("inspector"),
		title: Label("inspector-title", ""),
		score: Label("inspector-score", ""),
		hint:  Label("inspector-hint", "Esc to close"),
	}
}

// Show displays p.
func (in *Inspector) Show(p property.Property) {
	var cp property.Property
	if err := copier.CopyWithOption(&cp, &p, copier.Option{DeepCopy: true}); err != nil {
		cp = p
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.current = cp
	in.visible = true
	in.revision++
	in.layout()
}

// Hide closes the panel.
func (in *Inspector) Hide() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.visible {
		in.visible = false
		in.revision++
	}
}

// Revision changes every time the panel is shown or hidden, so callers can rebuild
// their node list only when it does.
func (in *Inspector) Revision() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.revision
}

// Visible reports whether the panel is shown.
func (in *Inspector) Visible() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.visible
}

// Current returns the property being shown.
func (in *Inspector) Current() (property.Property, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current, in.visible
}

// AppendNodes appends the panel's nodes to dst when visible.
func (in *Inspector) AppendNodes(dst []*Node) []*Node {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.visible {
		return dst
	}
	dst = append(dst, in.panel, in.title, in.score)
	dst = append(dst, in.lines...)
	in.hint.Row = len(in.lines) + 5
	return append(dst, in.hint)
}

// layout rebuilds the label texts from current. Caller holds mu.
func (in *Inspector) layout() {
	p := in.current
	in.title.Text = p.Name
	if in.title.Text == "" {
		in.title.Text = p.ID
	}
	in.score.Text = fmt.Sprintf("Match %.0f / 100", property.Clamp100(p.MatchScore))

	var rows []string
	if p.Address != "" {
		rows = append(rows, p.Address)
	}
	if p.HasCoordinate() {
		rows = append(rows, fmt.Sprintf("%.5f, %.5f", p.Coordinate.Lat(), p.Coordinate.Lon()))
	} else {
		rows = append(rows, "Location unknown")
	}
	for _, name := range sortedKeys(p.Attributes) {
		v, _ := p.Attribute(name)
		rows = append(rows, fmt.Sprintf("%s: %.0f", humanize(name), v))
	}
	for _, name := range sortedKeys(p.Meta) {
		rows = append(rows, fmt.Sprintf("%s: %s", humanize(name), p.Meta[name]))
	}

	in.lines = in.lines[:0]
	for i, text := range rows {
		n := Label("inspector-line", text)
		n.Row = i
		in.lines = append(in.lines, n)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// humanize turns "walk_score" into "Walk score".
func humanize(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
