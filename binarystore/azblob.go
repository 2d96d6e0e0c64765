package binarystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

var (
	MissingContainer = errors.New("container name is empty")
	InvalidAccount   = errors.New("connection string lacks AccountName or AccountKey")
)

type AzureBlob struct {
	client    *azblob.Client
	container string

	containerOnce sync.Once
	containerErr  error
}

// NewAzureBlob connects with a storage account connection string
// ("AccountName=...;AccountKey=...;BlobEndpoint=..."). Plain HTTP endpoints
// (Azurite) are allowed.
func NewAzureBlob(connectionString string, container string) (*AzureBlob, error) {
	if container == "" {
		return nil, MissingContainer
	}

	params := parseConnectionString(connectionString)
	accountName := params["AccountName"]
	accountKey := params["AccountKey"]
	if accountName == "" || accountKey == "" {
		return nil, InvalidAccount
	}

	serviceURL := params["BlobEndpoint"]
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azblob.NewSharedKeyCredential: %w", err)
	}

	var clientOpts *azblob.ClientOptions
	if strings.HasPrefix(strings.ToLower(serviceURL), "http://") {
		clientOpts = &azblob.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				InsecureAllowCredentialWithHTTP: true,
			},
		}
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("azblob.NewClientWithSharedKeyCredential: %w", err)
	}

	return &AzureBlob{
		client:    client,
		container: container,
	}, nil
}

func (s *AzureBlob) ensureContainer(ctx context.Context) error {
	s.containerOnce.Do(func() {
		_, err := s.client.CreateContainer(ctx, s.container, nil)
		if err != nil {
			var respErr *azcore.ResponseError
			if errors.As(err, &respErr) && respErr.ErrorCode == "ContainerAlreadyExists" {
				err = nil
			}
		}

		if err != nil {
			s.containerErr = fmt.Errorf("azblob.Client.CreateContainer: %w", err)
		}
	})

	return s.containerErr
}

func (s *AzureBlob) Store(ctx context.Context, id string, bin *ycd.BinaryData) (ref string, err error) {
	if err = checkInput(id, bin); err != nil {
		return
	}

	if err = s.ensureContainer(ctx); err != nil {
		return
	}

	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlockBlobClient(objectKey("", id, bin.FileName))

	opts := &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"filename": to.Ptr(bin.FileName),
		},
	}
	if bin.MimeType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{
			BlobContentType: to.Ptr(bin.MimeType),
		}
	}

	if _, err = blobClient.UploadBuffer(ctx, bin.Data, opts); err != nil {
		return "", fmt.Errorf("blockblob.Client.UploadBuffer: %w", err)
	}

	return blobClient.URL(), nil
}

func parseConnectionString(connectionString string) map[string]string {
	parts := strings.Split(connectionString, ";")
	params := make(map[string]string, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			continue
		}
		params[key] = value
	}

	return params
}
