package excel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"alignbench/domain/scoring"
)

// ParseRecords converts a tests table into records. Cells that do not parse
// as numbers are treated as missing; unknown test types are kept verbatim and
// degrade during scoring.
func ParseRecords(sheet *SheetData) ([]scoring.TestRecord, error) {
	if len(sheet.Headers) == 0 {
		return nil, fmt.Errorf("tests table has no header row")
	}
	var missing []string
	for _, col := range requiredColumns {
		if !sheet.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("tests table is missing required columns: %s", strings.Join(missing, ", "))
	}

	records := make([]scoring.TestRecord, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		records = append(records, parseRecord(row))
	}
	return records, nil
}

func parseRecord(row RawRowData) scoring.TestRecord {
	testType := scoring.TestType(row[ColTestType])
	if parsed, err := scoring.ParseTestType(row[ColTestType]); err == nil {
		testType = parsed
	}

	return scoring.TestRecord{
		TestName:      row[ColTestName],
		FindingID:     row[ColFindingID],
		SubStudyID:    row[ColSubStudyID],
		StudyID:       row[ColStudyID],
		Type:          testType,
		Independent:   parseBool(row[ColIndependent]),
		Human:         parseSide(row, HumanPrefix),
		Agent:         parseSide(row, AgentPrefix),
		Direction:     parseInt(row[ColDirection]),
		Weight:        parseFloat(row[ColTestWeight]),
		FindingWeight: parseFloat(row[ColFindingWeight]),
	}
}

func parseSide(row RawRowData, prefix string) scoring.Side {
	cell := func(col string) string { return row[prefix+col] }

	side := scoring.Side{
		Statistic:      parseFloatPtr(cell(ColStatistic)),
		N1:             parseInt(cell(ColN1)),
		N2:             parseInt(cell(ColN2)),
		DF1:            parseFloat(cell(ColDF1)),
		DF2:            parseFloat(cell(ColDF2)),
		Successes:      parseInt(cell(ColSuccesses)),
		Trials:         parseInt(cell(ColTrials)),
		NullProportion: parseFloat(cell(ColNullProportion)),
		PValue:         parseFloatPtr(cell(ColPValue)),
		EffectSize:     parseFloatPtr(cell(ColEffectSize)),
		EffectD:        parseFloatPtr(cell(ColEffectD)),
		Pi:             parseProbability(cell(ColPi)),
		Significant:    parseBool(cell(ColSignificant)),
		Direction:      parseInt(cell(ColSideDirection)),
	}

	a, b := parseFloatPtr(cell(ColCountA)), parseFloatPtr(cell(ColCountB))
	c, d := parseFloatPtr(cell(ColCountC)), parseFloatPtr(cell(ColCountD))
	if a != nil && b != nil && c != nil && d != nil {
		side.Counts = &scoring.Table2x2{A: *a, B: *b, C: *c, D: *d}
	}
	return side
}

// ParseWeights converts a weights table. Rows with a test_name weigh one test;
// rows without one weigh the whole finding. A blank study_id applies the row
// to the finding id in every study.
func ParseWeights(sheet *SheetData) scoring.WeightTable {
	tests := make(map[scoring.WeightKey]float64)
	findings := make(map[scoring.WeightKey]float64)
	for _, row := range sheet.Rows {
		finding := row[ColFindingID]
		w := parseFloatPtr(row[ColWeight])
		if finding == "" || w == nil {
			continue
		}
		key := scoring.WeightKey{StudyID: row[ColStudyID], FindingID: finding, TestName: row[ColTestName]}
		if key.TestName != "" {
			tests[key] = *w
		} else {
			findings[key] = *w
		}
	}
	return scoring.NewWeightTable(tests, findings)
}

// ParseDomains converts a two-column (domain, study_id) membership table
func ParseDomains(sheet *SheetData) (scoring.DomainMap, error) {
	table := make(map[string][]string)
	for _, row := range sheet.Rows {
		domain, study := row[ColDomain], row[ColStudyID]
		if domain == "" && study == "" {
			continue
		}
		table[domain] = append(table[domain], study)
	}
	dm, err := scoring.NewDomainMap(table)
	if err != nil {
		return scoring.DomainMap{}, fmt.Errorf("domains table: %w", err)
	}
	return dm, nil
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return scoring.Float(f)
}

func parseFloat(s string) float64 {
	if f := parseFloatPtr(s); f != nil {
		return *f
	}
	return 0
}

// parseInt accepts integral values written as floats ("24.0")
func parseInt(s string) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f := parseFloatPtr(s); f != nil {
		return int(*f)
	}
	return 0
}

func parseBool(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		v = true
	case "false", "no", "n", "0":
		v = false
	default:
		return nil
	}
	return &v
}

// parseProbability reads a scalar or a {plus, minus, zero} JSON object.
// Empty cells are missing; unreadable cells are Uncertain.
func parseProbability(s string) *scoring.Probability {
	if s == "" {
		return nil
	}
	var p scoring.Probability
	if strings.HasPrefix(s, "{") {
		p = scoring.ProbabilityFrom(json.RawMessage(s))
	} else {
		p = scoring.ProbabilityFrom(s)
	}
	return &p
}
