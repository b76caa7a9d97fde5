// Package filter evaluates conjunctions of optional criteria over
// aggregated entities.
//
// Everything here is pure. The same list and the same criteria always give
// the same result, in input order.
package filter

import (
	"strings"

	"github.com/lalith-99/clientdesk/internal/models"
	"golang.org/x/text/cases"
)

// Predicate reports whether an item passes one criterion.
type Predicate[T any] func(T) bool

// Apply keeps the items that pass every predicate. Nil predicates are
// inactive criteria and are ignored. The result is always a fresh slice, so
// Apply with no active predicates is a copy of items.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range active {
			if !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Count is len(Apply(items, preds...)) without building the slice.
func Count[T any](items []T, preds ...Predicate[T]) int {
	n := 0
next:
	for _, item := range items {
		for _, p := range preds {
			if p != nil && !p(item) {
				continue next
			}
		}
		n++
	}
	return n
}

// NameContains matches when field(item) contains text, ignoring case.
// Empty text is no constraint.
//
// Case folding goes through x/text so that accented names ("ÉRICA") match
// their lowercase forms.
func NameContains[T any](text string, field func(T) string) Predicate[T] {
	if text == "" {
		return nil
	}
	caser := cases.Fold()
	needle := caser.String(text)
	return func(item T) bool {
		return strings.Contains(caser.String(field(item)), needle)
	}
}

// PhoneContains is a literal substring match on the stored phone.
func PhoneContains[T any](text string, field func(T) string) Predicate[T] {
	if text == "" {
		return nil
	}
	return func(item T) bool {
		return strings.Contains(field(item), text)
	}
}

// NoTags is the tag filter value that selects entities without any tag.
const NoTags = "no-tags"

// TagFilter matches on tag membership. tag is "" (no constraint), NoTags,
// or a tag id in canonical string form.
func TagFilter[T any](tag string, field func(T) []models.Tag) Predicate[T] {
	switch tag {
	case "":
		return nil
	case NoTags:
		return func(item T) bool { return len(field(item)) == 0 }
	}
	return func(item T) bool {
		for _, t := range field(item) {
			if t.ID.String() == tag {
				return true
			}
		}
		return false
	}
}

// LevelEquals is exact equality on the level. The zero level is no
// constraint.
func LevelEquals(level models.Level) Predicate[models.Client] {
	if level == "" {
		return nil
	}
	return func(c models.Client) bool { return c.Level == level }
}

// MessageMode selects marketing rows by whether they carry a message.
type MessageMode string

const (
	AnyMessage     MessageMode = ""
	WithMessage    MessageMode = "with-message"
	WithoutMessage MessageMode = "without-message"
)

// MessagePresence filters on the trimmed message. A whitespace-only message
// counts as absent.
func MessagePresence(mode MessageMode) Predicate[models.MarketingMessage] {
	switch mode {
	case WithMessage:
		return func(m models.MarketingMessage) bool { return hasMessage(m) }
	case WithoutMessage:
		return func(m models.MarketingMessage) bool { return !hasMessage(m) }
	default:
		return nil
	}
}

func hasMessage(m models.MarketingMessage) bool {
	return strings.TrimSpace(m.MessageText()) != ""
}
