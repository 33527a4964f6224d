package fetch

import "sort"

// Status tags the outcome of one unit of work.
type Status int

const (
	// StatusSuccess means the item was fetched and persisted.
	StatusSuccess Status = iota
	// StatusFetchError means the network call failed or returned an
	// unusable body. Includes 404s.
	StatusFetchError
	// StatusSaveError means the fetch succeeded but persisting failed.
	StatusSaveError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFetchError:
		return "fetch_error"
	case StatusSaveError:
		return "save_error"
	default:
		return "unknown"
	}
}

// Item is one unit of work: an entity id plus an optional secondary
// key (the CLOB token id for price history downloads).
type Item struct {
	ID  string
	Key string
}

// Outcome is the per-item result reported by a worker.
type Outcome struct {
	ID     string
	Status Status
	Err    error
}

// Summary aggregates the outcomes of a pool run. The failed-ID lists
// are the retry mechanism: rerunning the tool targets exactly these.
type Summary struct {
	Total         int
	Success       int
	FetchErrorIDs []string
	SaveErrorIDs  []string
}

// FetchErrors returns the number of fetch failures.
func (s Summary) FetchErrors() int { return len(s.FetchErrorIDs) }

// SaveErrors returns the number of save failures.
func (s Summary) SaveErrors() int { return len(s.SaveErrorIDs) }

func (s *Summary) add(o Outcome) {
	s.Total++
	switch o.Status {
	case StatusSuccess:
		s.Success++
	case StatusFetchError:
		s.FetchErrorIDs = append(s.FetchErrorIDs, o.ID)
	case StatusSaveError:
		s.SaveErrorIDs = append(s.SaveErrorIDs, o.ID)
	}
}

func (s *Summary) sortIDs() {
	sort.Strings(s.FetchErrorIDs)
	sort.Strings(s.SaveErrorIDs)
}
