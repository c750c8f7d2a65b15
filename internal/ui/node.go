package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind is what a node draws.
type Kind int

const (
	// KindPanel draws background and border only.
	KindPanel Kind = iota
	// KindLabel draws a single line of text, plus background and border if styled.
	KindLabel
)

// Node is one element of the overlay. Class and ID are matched by .class and #id rules.
type Node struct {
	Kind  Kind
	Class string
	ID    string
	Text  string
	// Row moves the node Row line heights below its styled top, for lists of labels
	// sharing one class.
	Row int

	// Bounds is the last laid-out screen rectangle.
	Bounds rl.Rectangle
}

// Panel returns a panel node with class.
func Panel(class string) *Node {
	return &Node{Kind: KindPanel, Class: class}
}

// Label returns a label node with class and text.
func Label(class, text string) *Node {
	return &Node{Kind: KindLabel, Class: class, Text: text}
}
