package export

import "fmt"

// Dataset is a titled table. Rows are keyed by header; missing cells render empty.
type Dataset struct {
	Title    string
	Subtitle string
	// GroupBy names a header whose consecutive equal values form one section.
	GroupBy string
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	return nil
}

func (d Dataset) record(row map[string]string, skip string) []string {
	out := make([]string, 0, len(d.Headers))
	for _, header := range d.Headers {
		if header == skip {
			continue
		}
		out = append(out, row[header])
	}
	return out
}

// columns returns the headers shown as table columns. The group column becomes a section
// heading instead.
func (d Dataset) columns() []string {
	if d.GroupBy == "" {
		return d.Headers
	}
	out := make([]string, 0, len(d.Headers))
	for _, header := range d.Headers {
		if header != d.GroupBy {
			out = append(out, header)
		}
	}
	if len(out) == 0 {
		return d.Headers
	}
	return out
}
