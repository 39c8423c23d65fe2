package scoring

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Dataset is everything the engine scores in one run: the test records plus
// the weight and domain tables a loader built from study metadata
type Dataset struct {
	Records []TestRecord
	Weights WeightTable
	Domains DomainMap
}

// TestWeightEntry is the wire form of one WeightTable test entry
type TestWeightEntry struct {
	StudyID   string  `json:"study_id,omitempty"`
	FindingID string  `json:"finding_id"`
	TestName  string  `json:"test_name"`
	Weight    float64 `json:"weight"`
}

// weightsDocument carries unscoped finding weights under findings and
// study-scoped ones under studies (study id → finding id → weight)
type weightsDocument struct {
	Tests    []TestWeightEntry             `json:"tests,omitempty"`
	Findings map[string]float64            `json:"findings,omitempty"`
	Studies  map[string]map[string]float64 `json:"studies,omitempty"`
}

type datasetDocument struct {
	Records []TestRecord        `json:"records"`
	Weights weightsDocument     `json:"weights"`
	Domains map[string][]string `json:"domains"`
}

// UnmarshalJSON decodes a {records, weights, domains} document
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var doc datasetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	tests := make(map[WeightKey]float64, len(doc.Weights.Tests))
	for _, e := range doc.Weights.Tests {
		tests[WeightKey{StudyID: e.StudyID, FindingID: e.FindingID, TestName: e.TestName}] = e.Weight
	}
	findings := make(map[WeightKey]float64, len(doc.Weights.Findings))
	for id, w := range doc.Weights.Findings {
		findings[FindingKey("", id)] = w
	}
	for study, byFinding := range doc.Weights.Studies {
		for id, w := range byFinding {
			findings[FindingKey(study, id)] = w
		}
	}

	domains, err := NewDomainMap(doc.Domains)
	if err != nil {
		return fmt.Errorf("domains: %w", err)
	}

	d.Records = doc.Records
	d.Weights = NewWeightTable(tests, findings)
	d.Domains = domains
	return nil
}

// MarshalJSON encodes the dataset in the form UnmarshalJSON reads
func (d Dataset) MarshalJSON() ([]byte, error) {
	doc := datasetDocument{
		Records: d.Records,
		Domains: d.Domains.Table(),
	}
	if doc.Records == nil {
		doc.Records = []TestRecord{}
	}
	for k, v := range d.Weights.findings {
		if k.StudyID == "" {
			if doc.Weights.Findings == nil {
				doc.Weights.Findings = make(map[string]float64)
			}
			doc.Weights.Findings[k.FindingID] = v
			continue
		}
		if doc.Weights.Studies == nil {
			doc.Weights.Studies = make(map[string]map[string]float64)
		}
		if doc.Weights.Studies[k.StudyID] == nil {
			doc.Weights.Studies[k.StudyID] = make(map[string]float64)
		}
		doc.Weights.Studies[k.StudyID][k.FindingID] = v
	}
	for k, v := range d.Weights.tests {
		doc.Weights.Tests = append(doc.Weights.Tests, TestWeightEntry{StudyID: k.StudyID, FindingID: k.FindingID, TestName: k.TestName, Weight: v})
	}
	sort.Slice(doc.Weights.Tests, func(i, j int) bool {
		a, b := doc.Weights.Tests[i], doc.Weights.Tests[j]
		if a.StudyID != b.StudyID {
			return a.StudyID < b.StudyID
		}
		if a.FindingID != b.FindingID {
			return a.FindingID < b.FindingID
		}
		return a.TestName < b.TestName
	})
	return json.Marshal(doc)
}
