// Package govmetric is the HTTP client for the upstream GovMetric API.
//
// The upstream exposes two endpoints the portal consumes: GetPlaces,
// returning the raw nested Place/SubPlace records, and GovmetricLogin,
// which validates credentials passed as query parameters and returns
// the user's identity fields.
//
// The client applies a fixed request timeout and propagates errors
// without retries. Raw response types mirror the upstream JSON exactly;
// normalisation into view-model types happens in the place package.
package govmetric
