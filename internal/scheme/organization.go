package scheme

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-badge/badge/internal/metrics"
)

// orgCheck carries the per-caller parameters of a membership check. The
// authorization differs between schemes: basic logins present the end user's
// credential, token logins present the token recast as a basic credential.
type orgCheck struct {
	organization    string
	authorization   string
	challengeScheme string
	realm           string
}

// checkOrganization verifies that the authenticated user belongs to the
// configured organization and stamps it into the outcome's credentials. The
// outcome must already carry a username. The returned error is transport
// level only; membership denial is a normal failed outcome.
func checkOrganization(
	ctx context.Context,
	api ProviderAPI,
	recorder metrics.Recorder,
	check orgCheck,
	outcome Outcome,
) (Outcome, error) {
	start := time.Now()
	status, err := api.CheckMembership(
		ctx,
		check.organization,
		outcome.Credentials.Username,
		check.authorization,
	)
	if err != nil {
		recorder.RecordTransportFailure(opCheckMembership)
		return outcome, err
	}
	recorder.RecordProviderCall(opCheckMembership, status, time.Since(start))

	// Only 204 means member; 302 and 404 both mean no.
	if status != http.StatusNoContent {
		log.Printf(
			"'%s' is NOT a member of '%s'",
			outcome.Credentials.Username,
			check.organization,
		)
		outcome.Failure = &Failure{
			Message: reasonNotAuthorized,
			Scheme:  check.challengeScheme,
			Realm:   check.realm,
		}
		return outcome, nil
	}

	log.Printf("'%s' is a member of '%s'", outcome.Credentials.Username, check.organization)
	outcome.Credentials.Organization = check.organization
	return outcome, nil
}
