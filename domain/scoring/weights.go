package scoring

import (
	"fmt"
	"math"
	"sort"
)

// DefaultWeight applies to any test or finding without an explicit weight
const DefaultWeight = 1.0

// WeightKey addresses one test inside a finding of a study. Finding ids are
// only unique within a study; a key with an empty StudyID matches the finding
// in every study. Finding-level keys leave TestName empty.
type WeightKey struct {
	StudyID   string
	FindingID string
	TestName  string
}

// FindingKey returns the finding-level key for a study and finding
func FindingKey(studyID, findingID string) WeightKey {
	return WeightKey{StudyID: studyID, FindingID: findingID}
}

// WeightTable is an immutable lookup of per-test and per-finding weights,
// populated by a loader from study metadata
type WeightTable struct {
	tests    map[WeightKey]float64
	findings map[WeightKey]float64
}

// NewWeightTable copies the given maps, discarding entries that are not
// finite and strictly positive. TestName is ignored on finding keys.
func NewWeightTable(tests, findings map[WeightKey]float64) WeightTable {
	wt := WeightTable{
		tests:    make(map[WeightKey]float64, len(tests)),
		findings: make(map[WeightKey]float64, len(findings)),
	}
	for k, v := range tests {
		if validWeight(v) {
			wt.tests[k] = v
		}
	}
	for k, v := range findings {
		if validWeight(v) {
			wt.findings[FindingKey(k.StudyID, k.FindingID)] = v
		}
	}
	return wt
}

// TestWeight resolves the weight of one test: study-scoped entry, unscoped
// entry, then fallback (usually the record's own weight), then DefaultWeight
func (w WeightTable) TestWeight(studyID, findingID, testName string, fallback float64) float64 {
	return resolve(w.tests, WeightKey{StudyID: studyID, FindingID: findingID, TestName: testName}, fallback)
}

// FindingWeight resolves the weight of one finding in the same order
func (w WeightTable) FindingWeight(studyID, findingID string, fallback float64) float64 {
	return resolve(w.findings, FindingKey(studyID, findingID), fallback)
}

func resolve(m map[WeightKey]float64, k WeightKey, fallback float64) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	if k.StudyID != "" {
		k.StudyID = ""
		if v, ok := m[k]; ok {
			return v
		}
	}
	if validWeight(fallback) {
		return fallback
	}
	return DefaultWeight
}

// Len returns the number of explicit entries
func (w WeightTable) Len() int {
	return len(w.tests) + len(w.findings)
}

func validWeight(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// DomainMap is the fixed, immutable study → domain membership table
type DomainMap struct {
	byStudy  map[string]string
	byDomain map[string][]string
}

// NewDomainMap builds a DomainMap from domain → study ids. A study listed
// under two domains is a malformed table.
func NewDomainMap(domains map[string][]string) (DomainMap, error) {
	dm := DomainMap{
		byStudy:  make(map[string]string),
		byDomain: make(map[string][]string, len(domains)),
	}
	for domain, studies := range domains {
		if domain == "" {
			return DomainMap{}, fmt.Errorf("domain name cannot be empty")
		}
		seen := make(map[string]bool, len(studies))
		list := make([]string, 0, len(studies))
		for _, study := range studies {
			if study == "" {
				return DomainMap{}, fmt.Errorf("domain %s lists an empty study id", domain)
			}
			if prev, ok := dm.byStudy[study]; ok && prev != domain {
				return DomainMap{}, fmt.Errorf("study %s belongs to both %s and %s", study, prev, domain)
			}
			dm.byStudy[study] = domain
			if !seen[study] {
				seen[study] = true
				list = append(list, study)
			}
		}
		sort.Strings(list)
		dm.byDomain[domain] = list
	}
	return dm, nil
}

// DomainOf returns the domain a study belongs to
func (d DomainMap) DomainOf(studyID string) (string, bool) {
	domain, ok := d.byStudy[studyID]
	return domain, ok
}

// Domains returns the domain names in sorted order
func (d DomainMap) Domains() []string {
	names := make([]string, 0, len(d.byDomain))
	for name := range d.byDomain {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Studies returns the member study ids of a domain in sorted order
func (d DomainMap) Studies(domain string) []string {
	list := d.byDomain[domain]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Table returns a copy of the membership table as domain → studies
func (d DomainMap) Table() map[string][]string {
	out := make(map[string][]string, len(d.byDomain))
	for domain := range d.byDomain {
		out[domain] = d.Studies(domain)
	}
	return out
}
