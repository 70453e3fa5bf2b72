package engine

// Deduplicate collapses repeated slip ids within one run. Extraction backends
// tend to re-render a row more completely on a later pass across a page
// boundary, so the last-encountered record in document order wins. Output
// order stays stable: each slip keeps the position of its first occurrence.
func Deduplicate(records []*DeliveryRecord) []*DeliveryRecord {
	out := make([]*DeliveryRecord, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		if at, seen := index[rec.SlipID]; seen {
			out[at] = rec
			continue
		}
		index[rec.SlipID] = len(out)
		out = append(out, rec)
	}
	return out
}
