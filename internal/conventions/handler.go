package conventions

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/zjrosen/roster/internal/loader"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

// DefaultActionName is used when no default directive is present.
const DefaultActionName = "Index"

// Handler is a request handler. Every exported method is an action mapped
// to /<name>/<action>; the default action also answers /<name>.
type Handler struct {
	artifact
	actions       []string
	defaultAction string
	uris          map[string]string // normalized uri -> action
	exact         []string          // declaration order
	patterns      []string
}

var _ registry.Handler = (*Handler)(nil)

// NewHandler builds the request handler facade for t. A handler without
// actions is unavailable.
func NewHandler(t *loader.Type) (*Handler, error) {
	h := &Handler{
		artifact: newArtifact(t, SuffixHandler),
		actions:  exportedMethods(t),
		uris:     make(map[string]string),
	}

	if err := h.resolveDefault(t); err != nil {
		return nil, err
	}
	for _, pattern := range t.DirectiveValues(DirectiveURI) {
		if _, err := path.Match(pattern, "/"); err != nil {
			return nil, fmt.Errorf("%w %q on %s: %w", ErrInvalidPattern, pattern, t.QualifiedName(), err)
		}
		h.patterns = append(h.patterns, pattern)
	}

	base := "/" + registry.Decapitalize(h.name)
	if h.defaultAction != "" {
		h.addURI(base, h.defaultAction)
	}
	for _, action := range h.actions {
		h.addURI(base+"/"+registry.Decapitalize(action), action)
	}

	if len(h.actions) == 0 {
		h.available = false
	}
	return h, nil
}

func (h *Handler) resolveDefault(t *loader.Type) error {
	if name, ok := t.Directive(DirectiveDefault); ok {
		if !slices.Contains(h.actions, name) {
			return fmt.Errorf("%w %q on %s", ErrUnknownAction, name, t.QualifiedName())
		}
		h.defaultAction = name
		return nil
	}
	switch {
	case slices.Contains(h.actions, DefaultActionName):
		h.defaultAction = DefaultActionName
	case len(h.actions) > 0:
		h.defaultAction = h.actions[0]
	}
	return nil
}

func (h *Handler) addURI(uri, action string) {
	if _, exists := h.uris[uri]; exists {
		return
	}
	h.uris[uri] = action
	h.exact = append(h.exact, uri)
}

// Actions lists the action names in declaration order.
func (h *Handler) Actions() []string { return slices.Clone(h.actions) }

// DefaultAction is the action answering the bare handler URI.
func (h *Handler) DefaultAction() string { return h.defaultAction }

// URIs lists the exact URIs followed by the extra patterns.
func (h *Handler) URIs() []string {
	return append(slices.Clone(h.exact), h.patterns...)
}

// MapsToURI reports whether uri is one of the handler's URIs or matches one
// of its patterns. The query string and fragment are ignored.
func (h *Handler) MapsToURI(uri string) bool {
	_, ok := h.ActionFor(uri)
	return ok
}

// ActionFor returns the action serving uri. Pattern matches resolve to the
// default action.
func (h *Handler) ActionFor(uri string) (string, bool) {
	uri = NormalizeURI(uri)
	if action, ok := h.uris[uri]; ok {
		return action, true
	}
	for _, pattern := range h.patterns {
		if ok, _ := path.Match(pattern, uri); ok {
			return h.defaultAction, true
		}
	}
	return "", false
}

// NormalizeURI strips the query and fragment, forces a leading slash and
// cleans the path.
func NormalizeURI(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return path.Clean("/" + uri)
}
