package posts

import (
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the canonical textual form of the published date.
const DateLayout = "2006-01-02"

// Date is a calendar date rendered as YYYY-MM-DD in JSON, YAML and the
// on-disk frontmatter. Unparseable input decodes to the zero Date; the
// store substitutes "today" for zero dates (lossy recovery, not an
// error).
type Date struct {
	time.Time
}

// Today returns the current calendar date, truncated to midnight UTC.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. A failure returns the zero Date and the
// parse error.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		// malformed dates degrade to zero, normalized later
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// Metadata is everything about a post except its body. The field set
// mirrors the frontend content schema; yaml tags define the on-disk
// frontmatter keys, json tags the wire shape.
type Metadata struct {
	Slug                string   `json:"slug" yaml:"-"`
	Title               string   `json:"title" yaml:"title"`
	Published           Date     `json:"published" yaml:"published"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags                []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	FirstLevelCategory  string   `json:"first_level_category" yaml:"first_level_category"`
	SecondLevelCategory string   `json:"second_level_category" yaml:"second_level_category"`
	Author              string   `json:"author,omitempty" yaml:"author,omitempty"`
	Draft               bool     `json:"draft" yaml:"draft"`
	Cover               string   `json:"cover,omitempty" yaml:"cover,omitempty"`
	SourceLink          string   `json:"sourceLink,omitempty" yaml:"sourceLink,omitempty"`
	LicenseName         string   `json:"licenseName,omitempty" yaml:"licenseName,omitempty"`
	LicenseURL          string   `json:"licenseUrl,omitempty" yaml:"licenseUrl,omitempty"`
}

// Post is a full document: metadata plus markdown body.
type Post struct {
	Metadata `yaml:",inline"`
	Content  string `json:"content" yaml:"-"`
}
