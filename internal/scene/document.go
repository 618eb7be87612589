package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/monotint/internal/compression"
)

// Document is a design document: a root node plus the ids the user has
// selected in it.
type Document struct {
	Name        string   `json:"name,omitempty"`
	Root        *Element `json:"document"`
	SelectedIDs []string `json:"selection,omitempty"`
}

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("document has no root node")
	}
	return &doc, nil
}

// Encode writes the document to w as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Load reads a document from path. Gzip, xz and bzip2 compressed files are
// decompressed transparently.
func Load(path string) (*Document, error) {
	rc, err := compression.Open(path, 0)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes the document to path, compressing when the extension asks for it.
func (d *Document) Save(path string) error {
	wc, err := compression.Create(path)
	if err != nil {
		return err
	}
	if err := d.Encode(wc); err != nil {
		wc.Abort()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// rootNode returns the root as a Node, keeping a nil root a nil interface.
func (d *Document) rootNode() Node {
	if d.Root == nil {
		return nil
	}
	return d.Root
}

// SelectByID resolves ids to nodes, preserving order.
// Unknown ids are reported together in one error.
func (d *Document) SelectByID(ids []string) ([]Node, error) {
	index := make(map[string]Node)
	Walk(d.rootNode(), func(n Node) bool {
		if _, dup := index[n.ID()]; !dup {
			index[n.ID()] = n
		}
		return true
	})

	nodes := make([]Node, 0, len(ids))
	var missing []string
	for _, id := range ids {
		n, ok := index[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		nodes = append(nodes, n)
	}
	if len(missing) > 0 {
		return nodes, fmt.Errorf("unknown node ids: %s", strings.Join(missing, ", "))
	}
	return nodes, nil
}

// Selection implements SelectionProvider using the document's stored
// selection. Ids that no longer resolve are dropped.
func (d *Document) Selection() []Node {
	nodes, _ := d.SelectByID(d.SelectedIDs)
	return nodes
}
