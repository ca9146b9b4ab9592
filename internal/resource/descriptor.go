// Package resource loads page descriptors, renders them into displayable
// roots and caches the result so repeated resolutions skip the source.
package resource

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mark3labs/stepwise/internal/page"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDescriptor is returned for descriptor files that cannot be parsed.
var ErrInvalidDescriptor = errors.New("invalid page descriptor")

// Descriptor is the on-disk form of a page or dialog.
//
//	id: login
//	title: Sign in
//	style: page
//	controller: login
//	body: |
//	  Enter your **credentials**.
type Descriptor struct {
	ID         page.ID    `yaml:"id"`
	Title      string     `yaml:"title"`
	Style      page.Style `yaml:"style"`
	Controller string     `yaml:"controller,omitempty"`
	Body       string     `yaml:"body"`

	// File is the path the descriptor was read from, relative to its source.
	File string `yaml:"-"`
}

// ParseDescriptor decodes a descriptor. name is the file name and supplies
// the default ID.
func ParseDescriptor(name string, data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, name, err)
	}
	d.File = name

	if d.ID == "" {
		d.ID = IDFromFile(name)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("%w: %s: empty id", ErrInvalidDescriptor, name)
	}

	switch d.Style {
	case "":
		d.Style = page.StylePage
	case page.StylePage, page.StyleDialog:
	default:
		return nil, fmt.Errorf("%w: %s: unknown style %q", ErrInvalidDescriptor, name, d.Style)
	}

	if d.Controller == "" && d.Style == page.StylePage {
		d.Controller = string(d.ID)
	}
	if d.Title == "" {
		d.Title = string(d.ID)
	}
	return &d, nil
}

// IDFromFile derives a page ID from a descriptor file name.
func IDFromFile(name string) page.ID {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	return page.ID(slug.Make(base))
}

// Marshal encodes the descriptor back to YAML.
func (d *Descriptor) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
