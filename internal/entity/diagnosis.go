package entity

// Verdict is the heuristic conclusion drawn from both probes.
type Verdict string

const (
	VerdictAuthHang       Verdict = "auth_hang"
	VerdictGeneralFailure Verdict = "general_failure"
	VerdictHealthy        Verdict = "healthy"
	VerdictInconclusive   Verdict = "inconclusive"
)

type Diagnosis struct {
	Verdict         Verdict  `json:"verdict"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}
