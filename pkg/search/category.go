package search

import "fmt"

// Category selects the predicate builder for a field
type Category int

const (
	CategoryUnsupported Category = iota
	CategoryText
	CategoryDate
	CategoryChoice
	CategoryBoolean
)

func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryDate:
		return "date"
	case CategoryChoice:
		return "choice"
	case CategoryBoolean:
		return "boolean"
	default:
		return "unsupported"
	}
}

// ParseCategory is the inverse of Category.String
func ParseCategory(s string) (Category, error) {
	switch s {
	case "text":
		return CategoryText, nil
	case "date":
		return CategoryDate, nil
	case "choice":
		return CategoryChoice, nil
	case "boolean", "bool":
		return CategoryBoolean, nil
	}
	return CategoryUnsupported, fmt.Errorf("search: unknown category %q", s)
}

// Categorizer maps a bare field name (possibly a "__" relation path) to its category
type Categorizer func(field string) (Category, error)

// FieldSet lists fields per category, in declaration order
type FieldSet struct {
	Text    []string
	Date    []string
	Choice  []string
	Boolean []string
}

// Empty reports whether no field of any category is present
func (fs FieldSet) Empty() bool {
	return len(fs.Text) == 0 && len(fs.Date) == 0 && len(fs.Choice) == 0 && len(fs.Boolean) == 0
}

// Classify buckets fields with categorize. The first field that cannot be
// categorized fails the whole set.
func Classify(fields []string, categorize Categorizer) (FieldSet, error) {
	var fs FieldSet
	for _, field := range fields {
		cat, err := categorize(field)
		if err != nil {
			return FieldSet{}, err
		}
		switch cat {
		case CategoryText:
			fs.Text = append(fs.Text, field)
		case CategoryDate:
			fs.Date = append(fs.Date, field)
		case CategoryChoice:
			fs.Choice = append(fs.Choice, field)
		case CategoryBoolean:
			fs.Boolean = append(fs.Boolean, field)
		default:
			return FieldSet{}, &UnsupportedFieldTypeError{Field: field, Kind: cat.String()}
		}
	}
	return fs, nil
}
