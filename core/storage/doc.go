// Package storage provides the object-storage client used by the totals
// export collaborator.
//
// The Client interface wraps the subset of the Minio API the application
// needs, so services can be tested against the testify mock in
// storage/mocks without a live S3 endpoint.
package storage
