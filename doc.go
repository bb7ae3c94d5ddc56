// Package zia provides a native Go client for the Zscaler Internet Access
// (ZIA) administrative REST API.
//
// # Features
//
//   - Obfuscated API key login with a per-client session token
//   - Service-based access to users, groups, departments, locations and
//     configuration activation
//   - Go 1.23+ iterators for pagination
//   - A bounded retry loop for rate limits, expired sessions and transient
//     failures, with a typed result when attempts run out
//   - A Helper for directory pulls and group membership updates
//
// # Quick Start
//
//	client, err := zia.NewClient(
//	    zia.WithCloud("zsapi.zscalerbeta.net"),
//	    zia.WithCredentials(username, password, apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Logout(ctx)
//
//	user, err := client.Users.Get(ctx, 12345)
//
// Calls log in on first use; Login may also be called explicitly.
//
// # Error Handling
//
// HTTP failures are typed and can be inspected with errors.As:
//
//	_, err := client.Users.Get(ctx, 42)
//	var notFound *zia.NotFoundError
//	if errors.As(err, &notFound) {
//	    // Handle not found
//	}
//
// When every attempt of a call fails the error is a *RetryExhaustedError
// whose Kind tells rate limiting, authentication, transport and status
// failures apart:
//
//	var exhausted *zia.RetryExhaustedError
//	if errors.As(err, &exhausted) && exhausted.Kind == zia.FailureRateLimited {
//	    // Back off for longer
//	}
//
// # Group membership
//
//	helper, _ := zia.NewHelper(client)
//	dir, err := helper.PullAll(ctx)
//	group, err := dir.FindGroup("Engineering")
//	_, err = helper.UpdateGroupMembership(ctx, dir, "jane@example.com", *group, zia.ActionAdd)
//	_, err = client.Status.Activate(ctx)
package zia
