package table

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// KeyComposer builds row keys for a single write session. In auto mode keys
// are "<run-id>~<sequence>", where the run id is generated once per composer
// and the sequence increments per record in call order. In explicit mode the
// key is the "~"-joined string form of the named fields, which are removed
// from the record so they are not redundantly written as column data.
//
// The sequence counter lives on the composer, so two writers never share key
// state. Explicit-mode keys are only unique if the chosen fields are unique
// per record; that is the caller's responsibility.
type KeyComposer struct {
	runID  string
	seq    int
	fields []string
}

// NewKeyComposer returns a composer for one write session. An empty rowFields
// list selects auto mode.
func NewKeyComposer(rowFields []string) *KeyComposer {
	return &KeyComposer{
		runID:  uuid.NewString(),
		fields: rowFields,
	}
}

// Compose returns the row key for rec. In explicit mode the key fields are
// removed from rec; a field missing from the record yields an empty key
// segment rather than an error.
func (k *KeyComposer) Compose(rec *Record) string {
	if len(k.fields) == 0 {
		key := k.runID + "~" + strconv.Itoa(k.seq)
		k.seq++
		return key
	}

	parts := make([]string, 0, len(k.fields))
	for _, name := range k.fields {
		if v, ok := rec.take(name); ok {
			parts = append(parts, stringify(v))
		} else {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "~")
}
