package excel

// RawRowData represents a row of raw cell values keyed by trimmed header
type RawRowData map[string]string

// SheetData represents one table read from a workbook sheet or CSV file
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the sheet carries the named header
func (s *SheetData) HasColumn(name string) bool {
	for _, h := range s.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Sheet names read from a workbook
const (
	TestsSheet   = "tests"
	WeightsSheet = "weights"
	DomainsSheet = "domains"
)

// Column names of the tests table. Side columns are prefixed with
// HumanPrefix or AgentPrefix.
const (
	ColTestName      = "test_name"
	ColFindingID     = "finding_id"
	ColSubStudyID    = "sub_study_id"
	ColStudyID       = "study_id"
	ColTestType      = "statistical_test_type"
	ColIndependent   = "independent"
	ColDirection     = "direction"
	ColTestWeight    = "test_weight"
	ColFindingWeight = "finding_weight"

	HumanPrefix = "human_"
	AgentPrefix = "agent_"

	ColStatistic      = "statistic"
	ColN1             = "n1"
	ColN2             = "n2"
	ColDF1            = "df1"
	ColDF2            = "df2"
	ColCountA         = "a"
	ColCountB         = "b"
	ColCountC         = "c"
	ColCountD         = "d"
	ColSuccesses      = "successes"
	ColTrials         = "trials"
	ColNullProportion = "null_proportion"
	ColPValue         = "p_value"
	ColEffectSize     = "effect_size"
	ColEffectD        = "effect_d"
	ColPi             = "pi"
	ColSignificant    = "significant"
	ColSideDirection  = "direction"

	ColWeight = "weight"
	ColDomain = "domain"
)

// requiredColumns must be present in every tests table
var requiredColumns = []string{ColStudyID, ColFindingID, ColTestType}
