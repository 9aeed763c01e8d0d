package validators

import (
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
)

// ParseID parses a positive integer identifier taken from a URL segment.
func ParseID(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Invalid item id").
			WithDetails(map[string]string{field: "must be a positive integer"})
	}
	return value, nil
}
