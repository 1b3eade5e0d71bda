package sshd

// Result is the three-way difference between an actual and a target Tree.
// A directive set in both with different values appears in Missing with the
// target value and in Extra with the actual value.
type Result struct {
	Matching Tree `json:"matching" yaml:"matching"`
	Missing  Tree `json:"missing_from_actual" yaml:"missing_from_actual"`
	Extra    Tree `json:"extra_in_actual" yaml:"extra_in_actual"`
}

// HasDrift reports whether actual and target differ.
func (r Result) HasDrift() bool {
	return !r.Missing.IsEmpty() || !r.Extra.IsEmpty()
}

// Compare computes the difference between actual and target. Neither input is
// modified. Include directives are ignored. Match blocks are compared per
// criterion; when a side repeats a criterion, its last block is used.
func Compare(actual, target Tree) Result {
	res := Result{
		Matching: NewTree(),
		Missing:  NewTree(),
		Extra:    NewTree(),
	}
	diffDirectives(actual.Global, target.Global, res.Matching.Global, res.Missing.Global, res.Extra.Global)
	res.Matching.Matches, res.Missing.Matches, res.Extra.Matches = compareMatches(actual.Matches, target.Matches)
	return res
}

func diffDirectives(actual, target, matching, missing, extra *Directives) {
	for _, key := range target.Keys() {
		if key == includeKey {
			continue
		}
		want, _ := target.Get(key)
		got, ok := actual.Get(key)
		switch {
		case !ok:
			missing.Add(key, want)
		case got == want:
			matching.Add(key, want)
		default:
			missing.Add(key, want)
			extra.Add(key, got)
		}
	}
	for _, key := range actual.Keys() {
		if key == includeKey || target.Has(key) {
			continue
		}
		got, _ := actual.Get(key)
		extra.Add(key, got)
	}
}

// criteria indexes Match blocks by criterion, remembering first-seen order.
type criteria struct {
	order    []string
	settings map[string]*Directives
}

func indexCriteria(blocks []MatchBlock) criteria {
	idx := criteria{settings: map[string]*Directives{}}
	for _, b := range blocks {
		if _, seen := idx.settings[b.Criterion]; !seen {
			idx.order = append(idx.order, b.Criterion)
		}
		idx.settings[b.Criterion] = b.Settings
	}
	return idx
}

// compareMatches diffs the settings of every criterion found on either side.
// Results follow target order, then criteria only the actual side has.
func compareMatches(actual, target []MatchBlock) (matching, missing, extra []MatchBlock) {
	a := indexCriteria(actual)
	t := indexCriteria(target)

	all := append([]string(nil), t.order...)
	for _, c := range a.order {
		if _, ok := t.settings[c]; !ok {
			all = append(all, c)
		}
	}

	for _, c := range all {
		m, mi, e := NewDirectives(), NewDirectives(), NewDirectives()
		diffDirectives(a.settings[c], t.settings[c], m, mi, e)
		if m.Len() > 0 {
			matching = append(matching, MatchBlock{Criterion: c, Settings: m})
		}
		if mi.Len() > 0 {
			missing = append(missing, MatchBlock{Criterion: c, Settings: mi})
		}
		if e.Len() > 0 {
			extra = append(extra, MatchBlock{Criterion: c, Settings: e})
		}
	}
	return matching, missing, extra
}
