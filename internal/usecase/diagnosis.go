package usecase

import "github.com/user/edge-probe/internal/entity"

// Diagnose turns the two probe outcomes into a verdict. The order of the
// checks matters: a failing unauthenticated probe is a general failure even
// when the authenticated one happened to succeed.
func Diagnose(quickOK, authOK bool) entity.Diagnosis {
	switch {
	case quickOK && !authOK:
		return entity.Diagnosis{
			Verdict: entity.VerdictAuthHang,
			Findings: []string{
				"The function answers unauthenticated requests quickly",
				"The function hangs or fails on authenticated requests",
				"This behaviour explains the endless loading loop in the frontend",
			},
			Recommendations: []string{
				"Investigate the authentication path inside the Edge Function",
				"Check how authenticated payloads are processed",
				"Add timeouts and better error handling around the import",
			},
		}
	case !quickOK:
		return entity.Diagnosis{
			Verdict: entity.VerdictGeneralFailure,
			Findings: []string{
				"The function has general problems, not specific to authentication",
				"There may be an infinite loop or very slow processing",
			},
		}
	case authOK:
		return entity.Diagnosis{
			Verdict: entity.VerdictHealthy,
			Findings: []string{
				"The function is working correctly",
				"The problem is likely in the frontend or elsewhere",
			},
		}
	}
	return entity.Diagnosis{Verdict: entity.VerdictInconclusive}
}

// ExitCode is 0 only when the authenticated import call succeeded.
func ExitCode(authOK bool) int {
	if authOK {
		return 0
	}
	return 1
}
