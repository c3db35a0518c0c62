// Package tree implements the indentation-based line tree that grammars and
// documents are read into. Every line is a node, its words are separated by a
// single space and its children are the following lines indented by exactly
// one more space.
package tree

import (
	"sort"
	"strings"
	"sync/atomic"
)

const (
	NodeBreak = "\n"
	WordBreak = " "
	Edge      = " "
)

// clock hands out modification stamps. Stamps only grow, so a cache stamped
// with a node's ModTime is stale as soon as the two differ.
var clock atomic.Int64

func tick() int64 {
	return clock.Add(1)
}

type Node struct {
	line     string
	parent   *Node
	children []*Node
	lineTime int64
	modTime  int64
}

// New returns an empty root node.
func New() *Node {
	now := tick()
	return &Node{lineTime: now, modTime: now}
}

// Parse reads text into a tree. A line indented deeper than one level below
// its predecessor keeps the surplus spaces as part of its own line.
func Parse(text string) *Node {
	root := New()
	if text == "" {
		return root
	}
	text = strings.ReplaceAll(text, "\r", "")

	now := tick()
	stack := []*Node{root}
	for _, raw := range strings.Split(text, NodeBreak) {
		depth := leadingEdges(raw) + 1
		if depth > len(stack) {
			depth = len(stack)
		}
		parent := stack[depth-1]
		child := &Node{
			line:     raw[depth-1:],
			parent:   parent,
			lineTime: now,
			modTime:  now,
		}
		parent.children = append(parent.children, child)
		stack = append(stack[:depth], child)
	}
	return root
}

func leadingEdges(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func (n *Node) touch() {
	now := tick()
	n.lineTime = now
	for node := n; node != nil; node = node.parent {
		node.modTime = now
	}
}

func (n *Node) touchStructure() {
	now := tick()
	for node := n; node != nil; node = node.parent {
		node.modTime = now
	}
}

// ModTime is the stamp of the most recent edit anywhere in the subtree.
func (n *Node) ModTime() int64 {
	return n.modTime
}

// LineModTime is the stamp of the most recent edit to this node's own line.
func (n *Node) LineModTime() int64 {
	return n.lineTime
}

func (n *Node) Line() string {
	return n.line
}

func (n *Node) SetLine(line string) {
	if n.line == line {
		return
	}
	n.line = line
	n.touch()
}

func (n *Node) Words() []string {
	if n.line == "" {
		return nil
	}
	return strings.Split(n.line, WordBreak)
}

func (n *Node) WordCount() int {
	if n.line == "" {
		return 0
	}
	return strings.Count(n.line, WordBreak) + 1
}

// Word returns the word at index i and whether the line has that many words.
func (n *Node) Word(i int) (string, bool) {
	words := n.Words()
	if i < 0 || i >= len(words) {
		return "", false
	}
	return words[i], true
}

func (n *Node) FirstWord() string {
	word, _ := n.Word(0)
	return word
}

func (n *Node) WordsFrom(i int) []string {
	words := n.Words()
	if i >= len(words) {
		return nil
	}
	return words[i:]
}

// Content is everything after the first word. ok is false when the line has
// no words after the first.
func (n *Node) Content() (content string, ok bool) {
	i := strings.Index(n.line, WordBreak)
	if i < 0 {
		return "", false
	}
	return n.line[i+1:], true
}

// SetWord replaces the word at index i, padding the line with empty words
// when i is past the end.
func (n *Node) SetWord(i int, word string) {
	words := n.Words()
	for len(words) <= i {
		words = append(words, "")
	}
	words[i] = word
	n.SetLine(strings.Join(words, WordBreak))
}

func (n *Node) DeleteWordAt(i int) {
	words := n.Words()
	if i < 0 || i >= len(words) {
		return
	}
	words = append(words[:i], words[i+1:]...)
	n.SetLine(strings.Join(words, WordBreak))
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

func (n *Node) Root() *Node {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Len() int {
	return len(n.children)
}

func (n *Node) At(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Index is the position of the node among its siblings, -1 for a root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, sibling := range n.parent.children {
		if sibling == n {
			return i
		}
	}
	return -1
}

// Depth is 0 for a root, 1 for its children and so on.
func (n *Node) Depth() int {
	depth := 0
	for node := n.parent; node != nil; node = node.parent {
		depth++
	}
	return depth
}

// Indentation is the leading whitespace the node's line is printed with.
func (n *Node) Indentation() string {
	depth := n.Depth()
	if depth < 2 {
		return ""
	}
	return strings.Repeat(Edge, depth-1)
}

func (n *Node) descendantCount() int {
	count := len(n.children)
	for _, child := range n.children {
		count += child.descendantCount()
	}
	return count
}

// LineNumber is the 1-based line the node occupies when its root is printed.
// A root has line number 0.
func (n *Node) LineNumber() int {
	if n.parent == nil {
		return 0
	}
	line := n.parent.LineNumber() + 1
	for _, sibling := range n.parent.children {
		if sibling == n {
			break
		}
		line += 1 + sibling.descendantCount()
	}
	return line
}

// TopDown lists every descendant in document order, excluding n itself.
func (n *Node) TopDown() []*Node {
	var nodes []*Node
	var walk func(node *Node)
	walk = func(node *Node) {
		for _, child := range node.children {
			nodes = append(nodes, child)
			walk(child)
		}
	}
	walk(n)
	return nodes
}

// NodeAtLine returns the descendant printed at the 0-based line index.
func (n *Node) NodeAtLine(lineIndex int) *Node {
	index := 0
	var found *Node
	var walk func(node *Node) bool
	walk = func(node *Node) bool {
		for _, child := range node.children {
			if index == lineIndex {
				found = child
				return true
			}
			index++
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(n)
	return found
}

func (n *Node) Find(firstWord string) *Node {
	for _, child := range n.children {
		if child.FirstWord() == firstWord {
			return child
		}
	}
	return nil
}

func (n *Node) Has(firstWord string) bool {
	return n.Find(firstWord) != nil
}

// Get returns the content of the first child whose first word matches.
func (n *Node) Get(firstWord string) string {
	child := n.Find(firstWord)
	if child == nil {
		return ""
	}
	content, _ := child.Content()
	return content
}

func (n *Node) FirstWords() []string {
	words := make([]string, len(n.children))
	for i, child := range n.children {
		words[i] = child.FirstWord()
	}
	return words
}

// AppendLine adds a child holding line. Any further lines in line become
// children of the new node.
func (n *Node) AppendLine(line string) *Node {
	return n.InsertLineAt(len(n.children), line)
}

func (n *Node) InsertLineAt(i int, line string) *Node {
	parsed := Parse(line)
	if len(parsed.children) == 0 {
		parsed.children = []*Node{{}}
	}
	child := parsed.children[0]
	for _, extra := range parsed.children[1:] {
		child.children = append(child.children, extra)
		extra.parent = child
	}
	n.insert(i, child)
	return child
}

// AppendNode moves child, with its subtree, to the end of n's children.
func (n *Node) AppendNode(child *Node) {
	if child.parent != nil {
		child.Destroy()
	}
	n.insert(len(n.children), child)
}

func (n *Node) insert(i int, child *Node) {
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.touch()
}

func (n *Node) PrependSibling(line string) *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.InsertLineAt(n.Index(), line)
}

// Destroy detaches the node from its parent. Destroying a root is a no-op.
func (n *Node) Destroy() {
	parent := n.parent
	if parent == nil {
		return
	}
	i := n.Index()
	if i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
	n.parent = nil
	parent.touchStructure()
}

func (n *Node) Clone() *Node {
	now := tick()
	var clone func(node *Node, parent *Node) *Node
	clone = func(node *Node, parent *Node) *Node {
		copied := &Node{line: node.line, parent: parent, lineTime: now, modTime: now}
		for _, child := range node.children {
			copied.children = append(copied.children, clone(child, copied))
		}
		return copied
	}
	return clone(n, nil)
}

// Sort reorders the children with a stable sort.
func (n *Node) Sort(less func(a, b *Node) bool) {
	sort.SliceStable(n.children, func(i, j int) bool {
		return less(n.children[i], n.children[j])
	})
	n.touchStructure()
}

// SetChildren replaces the child list with nodes, which must already be
// children of n, in a new order.
func (n *Node) SetChildren(nodes []*Node) {
	n.children = append(n.children[:0:0], nodes...)
	n.touchStructure()
}

// String prints the subtree below n, n's own line excluded.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return strings.TrimSuffix(sb.String(), NodeBreak)
}

// Text prints n's own line followed by its subtree.
func (n *Node) Text() string {
	var sb strings.Builder
	sb.WriteString(n.line)
	if len(n.children) > 0 {
		sb.WriteString(NodeBreak)
		n.write(&sb, 1)
	}
	return strings.TrimSuffix(sb.String(), NodeBreak)
}

func (n *Node) write(sb *strings.Builder, indent int) {
	for _, child := range n.children {
		sb.WriteString(strings.Repeat(Edge, indent))
		sb.WriteString(child.line)
		sb.WriteString(NodeBreak)
		child.write(sb, indent+1)
	}
}

// WordIndexAtChar maps a character offset in the printed line, indentation
// included, to a word index. Offsets inside the indentation map to negative
// indices: -1 is the innermost indentation column.
func (n *Node) WordIndexAtChar(charIndex int) int {
	if n.parent == nil {
		return 0
	}
	indents := n.Depth() - 1
	if charIndex < indents {
		return charIndex - indents
	}
	offset := charIndex - indents
	for i, word := range n.Words() {
		if offset <= len(word) {
			return i
		}
		offset -= len(word) + 1
	}
	words := n.WordCount()
	if words == 0 {
		return 0
	}
	return words - 1
}

// WordSpan returns the word at index i with its start and end character
// offsets in the printed line.
func (n *Node) WordSpan(i int) (word string, start, end int) {
	start = len(n.Indentation())
	words := n.Words()
	for j := 0; j < i && j < len(words); j++ {
		start += len(words[j]) + 1
	}
	if i >= 0 && i < len(words) {
		word = words[i]
	}
	return word, start, start + len(word)
}
