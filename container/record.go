package container

// Record is one decoded container frame: a module byte buffer and its
// preload classification. The data is never mutated after decoding.
type Record struct {
	Data        []byte
	PreloadOnly bool
}

// Store holds the decoded records of one container in file order.
//
// The order is semantically meaningful: it declares the preload/entry
// interleaving and the encounter order used to pick the designated entry
// record. A Store is read-only after construction and must outlive every
// execution context preloaded from it.
type Store struct {
	records []Record
}

// NewStore builds a Store from records in file order.
func NewStore(records []Record) *Store {
	return &Store{records: records}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns all records in file order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Preloads returns the preload-only records in file order.
func (s *Store) Preloads() []Record {
	var out []Record
	for _, r := range s.records {
		if r.PreloadOnly {
			out = append(out, r)
		}
	}
	return out
}

// Entries returns the non-preload records in file order.
func (s *Store) Entries() []Record {
	var out []Record
	for _, r := range s.records {
		if !r.PreloadOnly {
			out = append(out, r)
		}
	}
	return out
}

// Entry returns the designated entry record: the last non-preload record in
// file order. It is used when an engine demands a single top-level
// evaluation unit; binary-mode execution runs all of Entries instead.
func (s *Store) Entry() (Record, bool) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if !s.records[i].PreloadOnly {
			return s.records[i], true
		}
	}
	return Record{}, false
}
