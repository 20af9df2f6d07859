package localefile

// Coverage summarises how far a locale file has been translated relative to
// the source-locale file.
type Coverage struct {
	// Total is the number of source keys.
	Total int
	// Translated counts source keys present in the target with a value that
	// differs from the source text.
	Translated int
	// SameAsSource counts source keys present in the target with the
	// unchanged source text (seeded, not yet translated).
	SameAsSource int
	// Missing lists source keys absent from the target, in source order.
	Missing []string
	// Extra lists target keys the source no longer has.
	Extra []string
}

// Percent returns the translated share of Total as an integer percentage.
func (c Coverage) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return c.Translated * 100 / c.Total
}

// Compare computes the Coverage of target against source.
func Compare(source, target *Map) Coverage {
	c := Coverage{Total: source.Len()}
	for _, k := range source.keys {
		tv, ok := target.values[k]
		switch {
		case !ok:
			c.Missing = append(c.Missing, k)
		case tv == source.values[k]:
			c.SameAsSource++
		default:
			c.Translated++
		}
	}
	for _, k := range target.keys {
		if !source.Has(k) {
			c.Extra = append(c.Extra, k)
		}
	}
	return c
}
