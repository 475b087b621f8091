package services

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"spacetravelling/cmd/api/dto"
)

const utterancesSrc = "https://utteranc.es/client.js"

// CommentsConfig configures the utteranc.es widget.
type CommentsConfig struct {
	Repo      string
	IssueTerm string
	Label     string
	Theme     string
	AnchorID  string
}

// CommentsEmbed builds the widget descriptor. It returns nil when no repo is
// configured, which disables comments.
func CommentsEmbed(cfg CommentsConfig) (*dto.CommentsEmbed, error) {
	if cfg.Repo == "" {
		return nil, nil
	}
	attrs := []html.Attribute{
		{Key: "src", Val: utterancesSrc},
		{Key: "repo", Val: cfg.Repo},
		{Key: "issue-term", Val: defaultString(cfg.IssueTerm, "pathname")},
	}
	if cfg.Label != "" {
		attrs = append(attrs, html.Attribute{Key: "label", Val: cfg.Label})
	}
	attrs = append(attrs,
		html.Attribute{Key: "theme", Val: defaultString(cfg.Theme, "github-dark")},
		html.Attribute{Key: "crossorigin", Val: "anonymous"},
		html.Attribute{Key: "async", Val: "true"},
	)

	node := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script", Attr: attrs}
	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return nil, fmt.Errorf("render comments script: %w", err)
	}
	return &dto.CommentsEmbed{AnchorID: cfg.AnchorID, Script: sb.String()}, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
