package tree

import (
	"encoding/json"
	"time"
)

// Node is one entry in the generated documentation tree: a directory, a
// content page or a redirect.
type Node struct {
	Title            string
	URL              string
	DocumentFilePath string
	RedirectTo       string
	UpdateDate       time.Time
	Children         []*Node
}

// IsRedirect reports whether the node only points elsewhere.
func (n *Node) IsRedirect() bool {
	return n.RedirectTo != ""
}

// HasContent reports whether a directory node is worth keeping in its parent.
func (n *Node) HasContent() bool {
	return len(n.Children) > 0 || n.DocumentFilePath != "" || n.RedirectTo != ""
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}

type nodeJSON struct {
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	DocumentFilePath string    `json:"documentFilePath,omitempty"`
	RedirectTo       string    `json:"redirectTo,omitempty"`
	UpdateDate       time.Time `json:"updateDate"`
	Children         []*Node   `json:"children"`
}

// MarshalJSON writes the table-of-contents form of the node. Children is
// always an array and dates are UTC.
func (n *Node) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	return json.Marshal(nodeJSON{
		Title:            n.Title,
		URL:              n.URL,
		DocumentFilePath: n.DocumentFilePath,
		RedirectTo:       n.RedirectTo,
		UpdateDate:       n.UpdateDate.UTC(),
		Children:         children,
	})
}

// UnmarshalJSON reads a node previously written by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{
		Title:            raw.Title,
		URL:              raw.URL,
		DocumentFilePath: raw.DocumentFilePath,
		RedirectTo:       raw.RedirectTo,
		UpdateDate:       raw.UpdateDate,
		Children:         raw.Children,
	}
	if n.Children == nil {
		n.Children = []*Node{}
	}
	return nil
}
