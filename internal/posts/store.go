package posts

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/linglong/blog-admin/pkg/logger"
)

var (
	// ErrNotFound signals an operation on a slug with no stored document.
	ErrNotFound = errors.New("post not found")
	// ErrValidation signals missing required fields; no mutation happened.
	ErrValidation = errors.New("title and content are required")
)

// Builder triggers a rebuild of the static site. Implemented by
// build.Trigger; faked in tests.
type Builder interface {
	Rebuild(ctx context.Context) error
}

// Result reports a completed mutation. BuildErr carries the outcome of
// the post-mutation rebuild: the mutation itself is already durable and
// is never rolled back on build failure.
type Result struct {
	Slug     string
	BuildErr error
}

// Store performs CRUD over metadata-tagged markdown documents.
//
// Concurrent mutations of the same slug race (last writer wins); with a
// single administrator this is accepted and not guarded further.
type Store struct {
	storage Storage
	builder Builder
}

func NewStore(storage Storage, builder Builder) *Store {
	return &Store{storage: storage, builder: builder}
}

// Slugify derives a filesystem-safe slug from a title: unsafe characters
// and spaces become hyphens, runs of hyphens collapse, and an empty
// result falls back to "untitled". Idempotent.
func Slugify(title string) string {
	slug := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// validSlug rejects anything that could resolve outside the content
// directory. Slugs arriving via URL parameters pass through here.
func validSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, "/\\")
}

// ListMetadata scans every document and returns its metadata, newest
// first (ties broken by slug ascending). Unreadable files are logged
// and skipped; the listing itself never fails on a corrupt entry.
func (s *Store) ListMetadata() ([]Metadata, error) {
	slugs, err := s.storage.List()
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(slugs))
	for _, slug := range slugs {
		data, err := s.storage.Read(slug)
		if err != nil {
			logger.Errorf("skipping unreadable post %q: %v", slug, err)
			continue
		}
		m, err := decodeMetadata(data)
		if err != nil {
			logger.Errorf("skipping corrupt post %q: %v", slug, err)
			continue
		}
		m.Slug = slug
		if m.Published.IsZero() {
			m.Published = Today()
		}
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Published.Equal(out[j].Published.Time) {
			return out[i].Published.After(out[j].Published.Time)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// GetBySlug loads a full document. The bool is false when the document
// does not exist; read or parse failures are logged and reported the
// same way so callers never see internal paths.
func (s *Store) GetBySlug(slug string) (*Post, bool) {
	if !validSlug(slug) {
		return nil, false
	}
	data, err := s.storage.Read(slug)
	if err != nil {
		if !errors.Is(err, errSlugNotFound) {
			logger.Errorf("reading post %q: %v", slug, err)
		}
		return nil, false
	}
	p, err := decodeFrontmatter(data)
	if err != nil {
		logger.Errorf("parsing post %q: %v", slug, err)
		return nil, false
	}
	p.Slug = slug
	if p.Published.IsZero() {
		p.Published = Today()
	}
	return p, true
}

// Create writes a new document. The slug is derived from the title
// unless the caller supplies one. A colliding slug overwrites the
// existing document; with one administrator editing the site this is
// the accepted behavior.
func (s *Store) Create(ctx context.Context, p *Post) (*Result, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	if p.Title == "" || p.Content == "" {
		return nil, ErrValidation
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	} else if !validSlug(p.Slug) {
		p.Slug = Slugify(p.Slug)
	}
	if p.Published.IsZero() {
		p.Published = Today()
	}

	data, err := encodeFrontmatter(p)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Write(p.Slug, data); err != nil {
		return nil, err
	}
	logger.Infof("post created: %s", p.Slug)
	return &Result{Slug: p.Slug, BuildErr: s.rebuild(ctx)}, nil
}

// Update replaces the document stored at slug with the supplied fields.
// Full-replace semantics: fields the caller omits are dropped, not
// merged from the existing file. Fails when no document exists.
func (s *Store) Update(ctx context.Context, slug string, p *Post) (*Result, error) {
	if !validSlug(slug) {
		return nil, ErrNotFound
	}
	if _, err := s.storage.Read(slug); err != nil {
		if errors.Is(err, errSlugNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Slug = slug
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	if p.Title == "" || p.Content == "" {
		return nil, ErrValidation
	}
	if p.Published.IsZero() {
		p.Published = Today()
	}

	data, err := encodeFrontmatter(p)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Write(slug, data); err != nil {
		return nil, err
	}
	logger.Infof("post updated: %s", slug)
	return &Result{Slug: slug, BuildErr: s.rebuild(ctx)}, nil
}

// Delete removes the document. Fails when no document exists.
func (s *Store) Delete(ctx context.Context, slug string) (*Result, error) {
	if !validSlug(slug) {
		return nil, ErrNotFound
	}
	if err := s.storage.Remove(slug); err != nil {
		if errors.Is(err, errSlugNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	logger.Infof("post deleted: %s", slug)
	return &Result{Slug: slug, BuildErr: s.rebuild(ctx)}, nil
}

// Rebuild triggers a site build with no content mutation. Used to
// recover after a mutation whose follow-up build failed.
func (s *Store) Rebuild(ctx context.Context) error {
	if s.builder == nil {
		return errors.New("no site builder configured")
	}
	return s.builder.Rebuild(ctx)
}

func (s *Store) rebuild(ctx context.Context) error {
	if s.builder == nil {
		return nil
	}
	if err := s.builder.Rebuild(ctx); err != nil {
		logger.Errorf("site rebuild failed after content change: %v", err)
		return err
	}
	return nil
}
