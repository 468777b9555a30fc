// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// The client carries the base URL, credentials and display language for every
// call, so callers only name the endpoint and its query parameters.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"https://api.themoviedb.org/3",
//		"your-api-key",
//		logger,
//		tmdb.WithLanguage("ar"),
//		tmdb.WithTimeout(15*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.ListMovies(ctx, tmdb.SortPopular, 0)
//
// A v4 read access token can be used instead of (or alongside) the v3 key:
//
//	client, err := tmdb.NewClient(baseURL, "", logger, tmdb.WithBearerToken(token))
//
// # Error Handling
//
// Non-200 responses are returned as *APIError. APIError matches the sentinel
// errors with errors.Is, so callers can write:
//
//	if errors.Is(err, tmdb.ErrNotFound) {
//		// render the not-found view
//	}
package tmdb
