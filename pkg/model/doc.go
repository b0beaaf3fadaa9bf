// Package model defines the data structures used by the Shadow Drive SDK.
//
// # Files
//
// File pairs a name and content type with a payload that is resolved to bytes
// only when it is hashed or uploaded:
//
//	f := model.NewFileFromPath("report.pdf", "application/pdf", "/tmp/report.pdf")
//	g := model.NewFileFromBytes("hello.txt", "text/plain", []byte("hello"))
//
// # On-chain Accounts
//
// StorageAccount is a normalized view over both program layouts (V1 and V2).
// UserInfo, UnstakeInfo and StorageConfig mirror the remaining program
// accounts. They are decoded by package blockchain.
//
// # Responses
//
// Storage-node responses are flat JSON records: TxResponse,
// CreateStorageAccountResponse, StorageResponse, UploadResponse,
// BatchUploadResponse, EditFileResponse, DeleteFileResponse,
// FileDataResponse, ListObjectsResponse and StorageAccountInfo. They carry no
// invariants beyond successful decoding.
package model
