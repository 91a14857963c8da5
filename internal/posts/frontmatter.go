package posts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical on-disk form: a YAML frontmatter block fenced by ---,
// followed by the markdown body.
//
//	---
//	title: Hello
//	published: 2025-06-01
//	---
//
//	body text

var fence = []byte("---")

var errNoFrontmatter = errors.New("missing frontmatter block")

// encodeFrontmatter serializes a post to the canonical file format.
func encodeFrontmatter(p *Post) ([]byte, error) {
	meta, err := yaml.Marshal(p.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(fence)
	buf.WriteByte('\n')
	buf.Write(meta)
	buf.Write(fence)
	buf.WriteString("\n\n")
	buf.WriteString(p.Content)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// decodeFrontmatter parses a full document, metadata and body.
func decodeFrontmatter(data []byte) (*Post, error) {
	meta, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	p := &Post{}
	if err := yaml.Unmarshal(meta, &p.Metadata); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	p.Content = strings.TrimSpace(string(body))
	return p, nil
}

// decodeMetadata parses only the frontmatter block; the body is never
// unmarshalled, which keeps listing cheap.
func decodeMetadata(data []byte) (*Metadata, error) {
	meta, _, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := yaml.Unmarshal(meta, &m); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return &m, nil
}

// splitFrontmatter separates the fenced YAML block from the body.
func splitFrontmatter(data []byte) (meta, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return nil, nil, errNoFrontmatter
	}
	rest := data[len(fence):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, errors.New("frontmatter not terminated")
	}
	meta = rest[:idx+1]
	body = rest[idx+1+len(fence):]
	return meta, body, nil
}
