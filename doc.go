// Package portalclient is the HTTP client layer of the admin portal. One
// Client talks to several independently addressed backend services:
//
//   - A Registry maps service names to base URLs (built in code or loaded
//     from an HCL, JSON or YAML file with LoadConfig)
//   - Each service gets one lazily built, cached Instance
//   - An append-only interceptor pipeline runs on every instance, including
//     instances created before an interceptor was registered
//   - Every failure is returned as a *NormalizedError; a 401 clears the
//     credential store and navigates to the login page once per session
//   - Responses are decoded into the backends' uniform Envelope
//
// Typical usage:
//
//	registry := portalclient.MustRegistry(map[portalclient.ServiceName]string{
//	    portalclient.ServiceUsers: "https://users.example.com/api",
//	})
//	client := portalclient.New(registry,
//	    portalclient.WithCredentialStore(store),
//	    portalclient.WithNavigator(nav),
//	)
//	users, err := portalclient.GetPaginated[User](ctx, client, portalclient.ServiceUsers, "/users",
//	    portalclient.WithParam("page", "0"))
//
// Methods cannot take type parameters, so the typed facade is made of package
// functions (Get, Post, Put, Patch, Delete, Upload, GetPaginated, Request)
// taking the Client as an argument. Client.Do is the untyped primitive.
//
// Pages are zero-based throughout; see NewPagination.
package portalclient
