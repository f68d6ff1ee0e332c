package consultations

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrOwnerRequired  = errors.New("owner id is required")
	ErrRecommendation = errors.New("recommendation failed")
)
