package handlers

import (
	"net/http"
	"sort"

	"github.com/claimsat/internal/fuzzy"
	"github.com/claimsat/internal/service"
)

// SearchHandler handles name search across reunification records
type SearchHandler struct {
	Reunify *service.ReunifyService
}

// PersonSearchResult is one record whose name resembles the query
type PersonSearchResult struct {
	Kind       string  `json:"kind"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DisasterID string  `json:"disasterId"`
	Status     string  `json:"status"`
	Similarity float64 `json:"similarity"`
	Phonetic   bool    `json:"phonetic"`
}

const (
	// minSearchSimilarity is the lowest name similarity returned by SearchPeople
	minSearchSimilarity = 60.0
	maxSearchResults    = 100
)

// nameHit reports whether name answers the search term, by similarity or by sound
func nameHit(searchTerm, name string) (float64, bool, bool) {
	sim := fuzzy.NameSimilarity(searchTerm, name)
	phonetic := fuzzy.SoundsAlike(searchTerm, name)
	return sim, phonetic, sim >= minSearchSimilarity || phonetic
}

// SearchPeople finds missing persons and survivors by fuzzy or sound-alike name
func (h *SearchHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	searchTerm := query.Get("q")
	if searchTerm == "" {
		http.Error(w, "Search term required", http.StatusBadRequest)
		return
	}

	limit := clampInt(parseIntParam(query.Get("limit"), 20), 1, maxSearchResults)

	missing, err := h.Reunify.ListMissing(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}
	survivors, err := h.Reunify.ListSurvivors(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]PersonSearchResult, 0)
	for _, mp := range missing {
		if sim, phonetic, ok := nameHit(searchTerm, mp.Person.Name); ok {
			results = append(results, PersonSearchResult{
				Kind: "missing_person", ID: mp.ID, Name: mp.Person.Name,
				DisasterID: mp.DisasterID, Status: string(mp.Status), Similarity: sim, Phonetic: phonetic,
			})
		}
	}
	for _, s := range survivors {
		if sim, phonetic, ok := nameHit(searchTerm, s.Person.Name); ok {
			results = append(results, PersonSearchResult{
				Kind: "survivor", ID: s.ID, Name: s.Person.Name,
				DisasterID: s.DisasterID, Status: string(s.Status), Similarity: sim, Phonetic: phonetic,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	writeJSON(w, http.StatusOK, results)
}
