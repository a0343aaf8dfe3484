package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Capability string

const CapabilityNotify Capability = "notify"

var (
	ErrPluginDisabled    = errors.New("notifier is disabled")
	ErrChecksumMismatch  = errors.New("notifier checksum mismatch")
	ErrCapabilityMissing = errors.New("notifier capability missing")
	ErrPluginTimeout     = errors.New("notifier timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest registers one notifier plugin binary.
type Manifest struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version" yaml:"version"`
	Binary       string       `json:"binary" yaml:"binary"`
	SHA256       string       `json:"sha256" yaml:"sha256"`
	Enabled      bool         `json:"enabled" yaml:"enabled"`
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("notifier name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("notifier version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("notifier binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("notifier sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("notifier capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	if c != CapabilityNotify {
		return fmt.Errorf("unknown capability: %s", c)
	}
	return nil
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// DigestItem is one review awaiting attention.
type DigestItem struct {
	ReviewID string
	Subject  string
	Topic    string
	DueAt    string
	DaysLate int
}

// Digest summarises what a learner has to review on Date.
type Digest struct {
	Date     string
	Overdue  []DigestItem
	DueToday []DigestItem
}

func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.DueToday) == 0
}

func (d Digest) Title() string {
	switch {
	case d.Empty():
		return fmt.Sprintf("No reviews due on %s", d.Date)
	case len(d.Overdue) == 0:
		return fmt.Sprintf("%d review(s) due today", len(d.DueToday))
	default:
		return fmt.Sprintf("%d review(s) due today, %d overdue", len(d.DueToday), len(d.Overdue))
	}
}

// Body renders the digest as plain text lines, overdue first.
func (d Digest) Body() string {
	var b strings.Builder
	for _, item := range d.Overdue {
		fmt.Fprintf(&b, "! %s: %s (due %s, %dd late)\n", item.Subject, item.Topic, item.DueAt, item.DaysLate)
	}
	for _, item := range d.DueToday {
		fmt.Fprintf(&b, "- %s: %s\n", item.Subject, item.Topic)
	}
	return b.String()
}

// Delivery is the outcome of sending a digest to one notifier.
type Delivery struct {
	Notifier  string
	Delivered bool
	Error     string
}
