/*
Package client provides a Go client library for the Sift HTTP API.

The client wraps the intake and insight endpoints with type-safe methods,
sets the Idempotency-Key header on submissions, and decodes error bodies
into APIError values callers can inspect with errors.As.

# Usage

Submit a lead and poll for its insight:

	c := client.New("http://localhost:8100")
	defer c.Close()

	lead, replayed, err := c.SubmitLead(ctx, token, types.LeadPayload{
		Note: "Need pricing for 50 seats",
	})
	if err != nil {
		return err
	}

	insight, err := c.GetInsight(ctx, lead.ID)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		// not classified yet, retry later
	}

# Integration Points

The client is consumed by:
  - Integration tests: test/integration drives the full pipeline through it
  - External services: any Go program submitting leads programmatically

Safe retries are the intended pattern: reuse the same token when resending
a submission and the server returns the original lead instead of creating
a duplicate.
*/
package client
