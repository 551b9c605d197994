package collection

import "tableflip.dev/memoir/pkg/entry"

// entries is the ordered local projection. It changes only through the three
// mutations below or a wholesale replace.
type entries []entry.Memory

func (es entries) indexOf(id entry.ID) int {
	for i := range es {
		if es[i].ID == id {
			return i
		}
	}
	return -1
}

// insertFront puts m first regardless of the active ordering.
func (es entries) insertFront(m entry.Memory) entries {
	out := make(entries, 0, len(es)+1)
	out = append(out, m)
	return append(out, es...)
}

// replaceByID swaps the entry with m's ID for m, keeping its position.
func (es entries) replaceByID(m entry.Memory) (entries, bool) {
	i := es.indexOf(m.ID)
	if i < 0 {
		return es, false
	}
	out := es.clone()
	out[i] = m
	return out, true
}

// removeByID drops the entry with id.
func (es entries) removeByID(id entry.ID) (entries, bool) {
	i := es.indexOf(id)
	if i < 0 {
		return es, false
	}
	out := make(entries, 0, len(es)-1)
	out = append(out, es[:i]...)
	return append(out, es[i+1:]...), true
}

func (es entries) clone() entries {
	if es == nil {
		return nil
	}
	out := make(entries, len(es))
	for i := range es {
		out[i] = es[i].Clone()
	}
	return out
}
