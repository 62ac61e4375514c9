package table

import (
	"regexp"

	"github.com/rs/zerolog/log"
)

// ListTables returns the store's table names whose beginning matches the
// given regular expression. An empty pattern matches everything.
func ListTables(connector Connector, pattern string) ([]string, error) {
	// Anchor at the start: the filter matches name prefixes, not substrings.
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, err
	}

	conn, err := connector.Connect()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("closing listing session")
		}
	}()

	names, err := conn.Tables()
	if err != nil {
		return nil, err
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}
