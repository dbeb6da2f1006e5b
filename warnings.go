package regiontext

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem found while processing. The run continues;
// the affected page is marked partial or skipped.
type Warning struct {
	// Page is the page index, -1 when the warning is not page specific
	Page int

	// Message is a human readable description
	Message string

	// Err is the underlying error, usually a *model.DataIntegrityError or
	// *model.ConfigurationError
	Err error
}

// String returns the message. Messages already name their page.
func (w Warning) String() string {
	return w.Message
}

// Error makes a Warning usable with errors.Is and errors.As.
func (w Warning) Error() string {
	return w.Message
}

// Unwrap returns the underlying error
func (w Warning) Unwrap() error {
	return w.Err
}

func newWarning(page int, err error) Warning {
	return Warning{Page: page, Message: err.Error(), Err: err}
}

func newWarningf(page int, format string, args ...any) Warning {
	return Warning{Page: page, Message: fmt.Sprintf("page %d: ", page) + fmt.Sprintf(format, args...)}
}

// FormatWarnings renders warnings one per line. It returns "" for no warnings.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "- " + w.String()
	}
	return strings.Join(lines, "\n")
}
