// Package validator checks that parsed input is a non-empty array of objects.
package validator

import (
	"fmt"

	"github.com/mcncl/datamorph/internal/errors"
	"github.com/mcncl/datamorph/internal/models"
)

// Validate returns the records of root when it is a non-empty array whose
// elements are all objects. Every offending index is reported, not just the first.
func Validate(root models.Value) ([]models.Object, error) {
	if root.Kind != models.KindArray {
		return nil, errors.NewValidationError(
			fmt.Sprintf("top-level value is %s, want array", root.Kind),
			errors.ErrNotAnArray,
		)
	}
	if len(root.Array) == 0 {
		return nil, errors.NewValidationError("array has no elements", errors.ErrEmptyArray)
	}

	var invalid []int
	records := make([]models.Object, 0, len(root.Array))
	for i, elem := range root.Array {
		if elem.Kind != models.KindObject {
			invalid = append(invalid, i)
			continue
		}
		records = append(records, elem.Object)
	}
	if len(invalid) > 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("%d of %d elements are not objects", len(invalid), len(root.Array)),
			&errors.InvalidElementsError{Indices: invalid},
		)
	}
	return records, nil
}
