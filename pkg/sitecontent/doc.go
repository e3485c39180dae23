// Package sitecontent mediates between an HTTP-style API surface and two
// blob stores: a content store holding a small set of JSON site documents,
// and a media store holding user uploads under the "uploads/" prefix.
//
// The Handler is a stateless dispatcher. Each call to Handle validates the
// request, performs at most one storage call, and converts every outcome,
// including storage faults and panics, into a Response. Hosting adapters
// live in subpackages: api (net/http via chi) and gateway (API Gateway
// proxy events). Blob store implementations (memory, filesystem, S3) are
// provided under storage.
package sitecontent
