// Package binarystore holds binary attachments of node outputs outside of
// memory: on the local filesystem, in Amazon S3 or in Azure Blob Storage.
package binarystore

import (
	"errors"
	"path"
	"strings"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

var (
	NilBinaryData = errors.New("binary data is nil")
	EmptyID       = errors.New("binary data ID is empty")
)

var (
	_ ycd.BinaryDataStore = (*FS)(nil)
	_ ycd.BinaryDataStore = (*S3)(nil)
	_ ycd.BinaryDataStore = (*AzureBlob)(nil)
)

func objectKey(prefix string, id string, fileName string) string {
	fileName = path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if fileName == "." || fileName == "/" {
		fileName = "data"
	}

	return path.Join(prefix, id, fileName)
}

func checkInput(id string, bin *ycd.BinaryData) error {
	if bin == nil {
		return NilBinaryData
	}

	if id == "" {
		return EmptyID
	}

	return nil
}
