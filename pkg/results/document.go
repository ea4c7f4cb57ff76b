package results

const documentVersion = 1

// document is the structured (JSON/YAML) form of a snapshot.
type document struct {
	Version              int           `json:"version"                          yaml:"version"`
	TotalStringsHashed   uint64        `json:"total_strings_hashed,omitempty"   yaml:"total_strings_hashed,omitempty"`
	TotalCollisionsFound uint64        `json:"total_collisions_found,omitempty" yaml:"total_collisions_found,omitempty"`
	Records              []recordEntry `json:"records"                          yaml:"records"`
}

type recordEntry struct {
	Input        string `json:"input"                   yaml:"input"`
	Hash         uint32 `json:"hash"                    yaml:"hash"`
	CollidesWith string `json:"collides_with,omitempty" yaml:"collides_with,omitempty"`
	Attempts     uint64 `json:"attempts,omitempty"      yaml:"attempts,omitempty"`
}

func newDocument(snap Snapshot) document {
	doc := document{
		Version:              documentVersion,
		TotalStringsHashed:   snap.TotalStringsHashed,
		TotalCollisionsFound: snap.TotalCollisionsFound,
		Records:              make([]recordEntry, len(snap.Records)),
	}

	for i, rec := range snap.Records {
		doc.Records[i] = recordEntry{
			Input:        string(rec.Input),
			Hash:         rec.Hash,
			CollidesWith: string(rec.CollidesWith),
			Attempts:     rec.Attempts,
		}
	}

	return doc
}

func (d document) snapshot() Snapshot {
	snap := Snapshot{
		TotalStringsHashed:   d.TotalStringsHashed,
		TotalCollisionsFound: d.TotalCollisionsFound,
	}

	for _, e := range d.Records {
		rec := Record{Input: []byte(e.Input), Hash: e.Hash, Attempts: e.Attempts}
		if e.CollidesWith != "" {
			rec.CollidesWith = []byte(e.CollidesWith)
		}

		snap.Records = append(snap.Records, rec)
	}

	return snap
}
