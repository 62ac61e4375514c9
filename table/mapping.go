package table

// Selector names the fields a mapping entry claims from a record. Build one
// with AllFields or Columns; the zero value is invalid.
type Selector struct {
	all    bool
	fields []string
}

// AllFields selects every field not already claimed by an earlier mapping
// entry.
func AllFields() Selector {
	return Selector{all: true}
}

// Columns selects an explicit ordered list of fields. Fields absent from a
// record are skipped.
func Columns(names ...string) Selector {
	if names == nil {
		names = []string{}
	}
	return Selector{fields: names}
}

func (s Selector) valid() bool {
	if s.all {
		return len(s.fields) == 0
	}
	return s.fields != nil
}

// FamilyMap routes the selected fields of a record into one column family.
type FamilyMap struct {
	Family string
	Select Selector
}

// Mapping is an ordered list of family routes. Order is significant: every
// field claimed by an entry is removed from the working copy of the record
// before the next entry runs, so an all-remaining selector only sees fields
// no earlier entry claimed.
type Mapping []FamilyMap

// validate rejects malformed mappings before any record is processed, so an
// invalid mapping never flushes a partial batch.
func (m Mapping) validate() error {
	if len(m) == 0 {
		return newError(ErrInvalidMapping, "mapping is empty")
	}
	for _, fm := range m {
		if fm.Family == "" {
			return newError(ErrInvalidMapping, "family name is empty")
		}
		if !fm.Select.valid() {
			return newError(ErrInvalidMapping, "selector for family %q is neither explicit fields nor all remaining", fm.Family)
		}
	}
	return nil
}

// Families returns the family names in mapping order.
func (m Mapping) Families() []string {
	out := make([]string, 0, len(m))
	for _, fm := range m {
		out = append(out, fm.Family)
	}
	return out
}

// apply consumes rec according to the mapping and returns the column data for
// one row, keyed by the "family:field" composite id. All values are
// stringified.
func (m Mapping) apply(rec *Record) (map[string]string, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	columns := make(map[string]string)
	for _, fm := range m {
		if fm.Select.all {
			for _, f := range *rec {
				columns[fm.Family+":"+f.Name] = stringify(f.Value)
			}
			*rec = (*rec)[:0]
			continue
		}
		for _, name := range fm.Select.fields {
			if v, ok := rec.take(name); ok {
				columns[fm.Family+":"+name] = stringify(v)
			}
		}
	}
	return columns, nil
}
