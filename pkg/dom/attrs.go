package dom

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// ClassAttr is the attribute merged additively instead of being overwritten.
const ClassAttr = "class"

// GetAttr returns the value of key on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Attrs returns a copy of n's attributes as a map.
func Attrs(n *html.Node) map[string]string {
	out := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		if a.Namespace == "" {
			out[a.Key] = a.Val
		}
	}
	return out
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := GetAttr(n, ClassAttr)
	return strings.Fields(v)
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass merges classes into n's class list. Existing classes keep their
// position and duplicates are dropped. Each argument may hold several
// space-separated classes.
func AddClass(n *html.Node, classes ...string) {
	current := Classes(n)
	seen := make(map[string]bool, len(current))
	for _, c := range current {
		seen[c] = true
	}
	changed := false
	for _, arg := range classes {
		for _, c := range strings.Fields(arg) {
			if seen[c] {
				continue
			}
			seen[c] = true
			current = append(current, c)
			changed = true
		}
	}
	if changed {
		SetAttr(n, ClassAttr, strings.Join(current, " "))
	}
}

// ApplyAttrs applies attrs to n additively: class is merged, anything else
// overwrites.
func ApplyAttrs(n *html.Node, attrs map[string]string) {
	for _, key := range slices.Sorted(maps.Keys(attrs)) {
		if key == ClassAttr {
			AddClass(n, attrs[key])
			continue
		}
		SetAttr(n, key, attrs[key])
	}
}

// DiffAttrs returns the attributes of current that were not present with the
// same value in base. For class, the result holds the classes of current
// missing from base.
func DiffAttrs(base, current map[string]string) map[string]string {
	out := make(map[string]string)
	for key, val := range current {
		if key == ClassAttr {
			baseClasses := make(map[string]bool)
			for _, c := range strings.Fields(base[ClassAttr]) {
				baseClasses[c] = true
			}
			var extra []string
			for _, c := range strings.Fields(val) {
				if !baseClasses[c] {
					extra = append(extra, c)
				}
			}
			if len(extra) > 0 {
				out[ClassAttr] = strings.Join(extra, " ")
			}
			continue
		}
		if prev, ok := base[key]; !ok || prev != val {
			out[key] = val
		}
	}
	return out
}

// SetHidden marks n hidden.
func SetHidden(n *html.Node) {
	SetAttr(n, "hidden", "")
}

// IsHidden reports whether n carries the hidden attribute.
func IsHidden(n *html.Node) bool {
	_, ok := GetAttr(n, "hidden")
	return ok
}

// Placeholder returns an empty hidden div.
func Placeholder(classes ...string) *html.Node {
	n := Element("div")
	SetHidden(n)
	AddClass(n, classes...)
	return n
}
