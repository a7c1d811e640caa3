// Package metadata holds the string headers attached to every published
// record message.
package metadata

// Header keys set by fakeflow on outgoing messages.
const (
	KeyOrigin      = "fakeflow_origin"
	KeyHost        = "fakeflow_host"
	KeyRunID       = "fakeflow_run_id"
	KeyOrdinal     = "fakeflow_ordinal"
	KeyContentType = "content_type"
	KeySchema      = "event_message_schema"
)

// Metadata represents the headers carried alongside a record.
type Metadata map[string]string

func (m Metadata) cloneWithExtra(extra int) Metadata {
	cloned := make(Metadata, len(m)+extra)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	return m.cloneWithExtra(0)
}

// With returns a cloned metadata map containing the provided key/value pair.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.cloneWithExtra(1)
	cloned[key] = value
	return cloned
}

// WithAll returns a cloned metadata map containing the supplied entries.
// Empty values are skipped.
func (m Metadata) WithAll(entries Metadata) Metadata {
	cloned := m.cloneWithExtra(len(entries))
	for k, v := range entries {
		if v == "" {
			continue
		}
		cloned[k] = v
	}
	return cloned
}

// New constructs a Metadata map from alternating key/value pairs. A trailing
// key without a value is ignored.
func New(pairs ...string) Metadata {
	md := make(Metadata, len(pairs)/2)
	for i := 0; i < len(pairs)-1; i += 2 {
		md[pairs[i]] = pairs[i+1]
	}
	return md
}
