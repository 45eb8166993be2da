// Package flattener turns nested JSON objects into single-level records keyed
// by separator-joined paths.
//
// Only objects are descended into. Arrays are leaves no matter what they
// contain, so an array of objects becomes one array-valued entry.
//
// A key that itself contains the separator can produce the same path as a
// nested key, e.g. {"a.b": 1, "a": {"b": 2}}. The later entry overwrites the
// earlier one in place; no escaping is attempted.
package flattener

import (
	"github.com/mcncl/datamorph/internal/models"
)

// DefaultSeparator joins path segments.
const DefaultSeparator = "."

// Unlimited disables the depth limit.
const Unlimited = -1

// Flattener flattens records using a fixed separator and depth limit.
type Flattener struct {
	separator string
	maxLevel  int
}

// New creates a Flattener. An empty separator falls back to DefaultSeparator.
// maxLevel is the deepest nesting level that is still descended into; objects
// below it are kept as leaves. A negative maxLevel means no limit.
func New(separator string, maxLevel int) *Flattener {
	if separator == "" {
		separator = DefaultSeparator
	}
	if maxLevel < 0 {
		maxLevel = Unlimited
	}
	return &Flattener{separator: separator, maxLevel: maxLevel}
}

// NewDefault creates a Flattener with "." and no depth limit.
func NewDefault() *Flattener {
	return New(DefaultSeparator, Unlimited)
}

// Flatten converts one record into a FlatRecord.
func (f *Flattener) Flatten(record models.Object) models.FlatRecord {
	out := models.NewFlatRecord()
	f.flattenInto(&out, record, "", 0)
	return out
}

// FlattenAll flattens every record, keeping input order.
func (f *Flattener) FlattenAll(records []models.Object) []models.FlatRecord {
	flat := make([]models.FlatRecord, len(records))
	for i, rec := range records {
		flat[i] = f.Flatten(rec)
	}
	return flat
}

func (f *Flattener) flattenInto(out *models.FlatRecord, obj models.Object, prefix string, level int) {
	for _, member := range obj {
		path := member.Key
		if prefix != "" {
			path = prefix + f.separator + member.Key
		}

		switch member.Value.Kind {
		case models.KindObject:
			if f.maxLevel != Unlimited && level >= f.maxLevel {
				out.Set(path, member.Value)
				continue
			}
			f.flattenInto(out, member.Value.Object, path, level+1)
		case models.KindNull, models.KindBool, models.KindNumber, models.KindString, models.KindArray:
			out.Set(path, member.Value)
		}
	}
}
