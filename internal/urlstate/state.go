package urlstate

import "sort"

// Navigation keys shared by the views.
const (
	KeyWorkspace        = "wsid"
	KeyFile             = "fid"
	KeySelection        = "select"
	KeyCenter           = "center"
	KeyDiagramHandler   = "diagHandler"
	KeyDiagramType      = "diagType"
	KeyDiagramNode      = "diagNode"
	KeySearchText       = "searchText"
	KeySearchType       = "searchType"
	KeySearchFileFilter = "searchFileFilter"
	KeySearchDirFilter  = "searchDirFilter"
	KeySearchPage       = "searchPage"
	KeyRepo             = "repoId"
	KeyCommit           = "commitId"
	KeyBranch           = "branchId"
	KeyMetricsType      = "metricsType"
	KeyNode             = "node"
)

// State is the flat key/value navigation map mirrored in the URL fragment.
type State map[string]string

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Changed lists the keys whose value differs between s and other.
func (s State) Changed(other State) []string {
	var keys []string
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			keys = append(keys, k)
		}
	}
	for k := range other {
		if _, ok := s[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
