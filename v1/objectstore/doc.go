// Package objectstore lets the commands read and write their JSON files either
// on local disk or in S3-compatible storage (MinIO, AWS S3).
//
// A location such as "s3://blocks/exports/block_data.json" is served through
// minio-go using MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY,
// MINIO_USE_SSL and MINIO_REGION. Any other string is a local path.
package objectstore
