package docpost

import (
	"errors"
	"fmt"
)

// ErrMissingDate is returned for a source without a date field. The post is
// skipped; Site.ReadAll continues with the remaining files.
var ErrMissingDate = errors.New("post has no date")

// DateFormatError reports a date field that is not in DateLayout form.
type DateFormatError struct {
	Path  string
	Value string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("%s: invalid date %q, want YYYY-MM-DD: %v", e.Path, e.Value, e.Err)
}

func (e *DateFormatError) Unwrap() error {
	return e.Err
}
