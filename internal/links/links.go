// Package links builds links to different representations of annotations.
package links

import (
	"context"
	"net/url"
	"strings"

	"github.com/spec-kit/annotation-auth/internal/features"
)

// Annotation is the part of an annotation that link generation reads.
type Annotation struct {
	ID         string   `json:"id"`
	References []string `json:"references,omitempty"`
	TargetURI  string   `json:"target_uri,omitempty"`
}

// IsReply reports whether the annotation references a parent.
func (a Annotation) IsReply() bool {
	return len(a.References) > 0
}

// Generator produces links for annotations.
type Generator struct {
	appURL     string
	bouncerURL string
	flags      features.Flags
}

// NewGenerator constructs a Generator. An empty bouncerURL disables in-context links.
func NewGenerator(appURL, bouncerURL string, flags features.Flags) *Generator {
	return &Generator{appURL: appURL, bouncerURL: bouncerURL, flags: flags}
}

// HTML returns the link to the annotation's HTML page.
func (g *Generator) HTML(a Annotation) (string, error) {
	return url.JoinPath(g.appURL, "a", a.ID)
}

// InContext returns a link to the annotation on the page where it was made.
// ok is false when direct linking is disabled, the annotation is a reply, or
// no bouncer URL is configured.
func (g *Generator) InContext(ctx context.Context, a Annotation) (link string, ok bool, err error) {
	if a.IsReply() || !g.flags.Enabled(ctx, features.DirectLinking) {
		return "", false, nil
	}
	if g.bouncerURL == "" {
		return "", false, nil
	}

	base, err := url.Parse(g.bouncerURL)
	if err != nil {
		return "", false, err
	}
	// The id is used as a path reference so it can never be read as a scheme.
	link = base.ResolveReference(&url.URL{Path: a.ID}).String()

	uri := a.TargetURI
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		link += "/" + uri[strings.Index(uri, "://")+3:]
	}
	return link, true, nil
}
