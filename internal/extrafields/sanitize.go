package extrafields

// Sanitize returns a deep copy of the tree with every transient file
// handle stripped, suitable for persistence. All value slots survive
// untouched.
func Sanitize(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		c := n
		c.PendingFile = ""
		if n.Type == TypeRepeater && n.Rows != nil {
			c.Rows = make([][]Node, len(n.Rows))
			for j, row := range n.Rows {
				c.Rows[j] = Sanitize(row)
			}
		}
		out[i] = c
	}
	return out
}

// CollectImageKeys walks the tree in pre-order and returns the keys of
// IMAGE nodes still waiting for their file. The order is the pairing
// order for multipart file parts that arrive without a key tag.
func CollectImageKeys(nodes []Node) []string {
	return collectImageKeys(nodes, nil)
}

func collectImageKeys(nodes []Node, acc []string) []string {
	for _, n := range nodes {
		if n.Type == TypeImage && pendingImage(n) {
			acc = append(acc, n.Key)
		}
		if n.Type == TypeRepeater {
			for _, row := range n.Rows {
				acc = collectImageKeys(row, acc)
			}
		}
	}
	return acc
}

func pendingImage(n Node) bool {
	if n.PendingFile != "" {
		return true
	}
	return n.ImageValue != nil && *n.ImageValue == PendingImageValue
}

// SetImageValue replaces the image value of the node with the given
// key, searching the tree in pre-order. Returns false when no IMAGE
// node with that key exists.
func SetImageValue(nodes []Node, key, value string) bool {
	for i := range nodes {
		n := &nodes[i]
		if n.Type == TypeImage && n.Key == key {
			n.ImageValue = &value
			n.PendingFile = ""
			return true
		}
		if n.Type == TypeRepeater {
			for j := range n.Rows {
				if SetImageValue(n.Rows[j], key, value) {
					return true
				}
			}
		}
	}
	return false
}
